package orchestrators

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// ErrUnknownFilter is returned for a filter name the collection does not define.
var ErrUnknownFilter = errors.New("unknown filter")

// FilterClearer drops every filter of a store.
type FilterClearer interface {
	ClearFilters()
}

// FilterStore is the filter surface of an entity store keyed by K.
type FilterStore[K comparable, E any] interface {
	SetFilter(key K, pred entitystate.Predicate[E])
	RemoveFilter(key K)
	FilterClearer
}

// FilterValueRecorder keeps the raw filter values shown back to the user.
type FilterValueRecorder interface {
	RecordFilter(collection, key, value string)
	ClearFilterValues(collection string)
}

// SetFilterInput carries one filter change. An empty Value removes the filter.
type SetFilterInput struct {
	Collection string
	Key        string
	Value      string
}

// ArtworkFilterDeps holds dependencies for SetArtworkFilter.
type ArtworkFilterDeps struct {
	Store  FilterStore[artwork.FilterKey, artwork.Artwork]
	Values FilterValueRecorder
}

// ExecuteSetArtworkFilter registers, replaces or removes one artwork filter.
// Status accepts a comma-separated list; any listed status matches.
// PRE: input.Key is a known artwork filter name
// POST: at most one predicate is registered for the key
func ExecuteSetArtworkFilter(input SetFilterInput, deps ArtworkFilterDeps) error {
	key, ok := artwork.ParseFilterKey(input.Key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, input.Key)
	}
	value := strings.TrimSpace(input.Value)
	if value == "" {
		deps.Store.RemoveFilter(key)
		deps.Values.RecordFilter(input.Collection, input.Key, "")
		return nil
	}

	var pred func(artwork.Artwork) bool
	switch key {
	case artwork.FilterSearch:
		pred = artwork.MatchSearch(value)
	case artwork.FilterStatus:
		var statuses []artwork.Status
		for _, part := range strings.Split(value, ",") {
			s := artwork.Status(strings.ToLower(strings.TrimSpace(part)))
			if !s.IsValid() {
				return &entitystate.ValidationError{Err: artwork.ErrInvalidStatus}
			}
			statuses = append(statuses, s)
		}
		pred = artwork.HasStatus(statuses...)
	case artwork.FilterType:
		pred = artwork.OfType(value)
	case artwork.FilterMaterial:
		pred = artwork.UsesMaterial(value)
	case artwork.FilterTag:
		pred = artwork.Tagged(value)
	}
	deps.Store.SetFilter(key, pred)
	deps.Values.RecordFilter(input.Collection, input.Key, value)
	slog.Debug("catalog_event", "event", "filter_set", "collection", input.Collection, "key", input.Key)
	return nil
}

// MaterialFilterDeps holds dependencies for SetMaterialFilter.
type MaterialFilterDeps struct {
	Store  FilterStore[material.FilterKey, material.Material]
	Values FilterValueRecorder
}

// ExecuteSetMaterialFilter registers, replaces or removes one material filter.
func ExecuteSetMaterialFilter(input SetFilterInput, deps MaterialFilterDeps) error {
	key, ok := material.ParseFilterKey(input.Key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, input.Key)
	}
	value := strings.TrimSpace(input.Value)
	if value == "" {
		deps.Store.RemoveFilter(key)
		deps.Values.RecordFilter(input.Collection, input.Key, "")
		return nil
	}

	var pred func(material.Material) bool
	switch key {
	case material.FilterSearch:
		pred = material.MatchSearch(value)
	case material.FilterSupplier:
		pred = material.FromSupplier(value)
	case material.FilterUnit:
		if !material.IsValidUnit(strings.ToLower(value)) {
			return &entitystate.ValidationError{Err: material.ErrInvalidUnit}
		}
		pred = material.MeasuredIn(value)
	}
	deps.Store.SetFilter(key, pred)
	deps.Values.RecordFilter(input.Collection, input.Key, value)
	return nil
}

// ArtworkTypeFilterDeps holds dependencies for SetArtworkTypeFilter.
type ArtworkTypeFilterDeps struct {
	Store  FilterStore[artworktype.FilterKey, artworktype.ArtworkType]
	Values FilterValueRecorder
}

// ExecuteSetArtworkTypeFilter registers, replaces or removes the artwork type search filter.
func ExecuteSetArtworkTypeFilter(input SetFilterInput, deps ArtworkTypeFilterDeps) error {
	key, ok := artworktype.ParseFilterKey(input.Key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, input.Key)
	}
	value := strings.TrimSpace(input.Value)
	if value == "" {
		deps.Store.RemoveFilter(key)
		deps.Values.RecordFilter(input.Collection, input.Key, "")
		return nil
	}
	deps.Store.SetFilter(key, artworktype.MatchSearch(value))
	deps.Values.RecordFilter(input.Collection, input.Key, value)
	return nil
}

// ExecuteClearFilters removes every filter of one collection.
func ExecuteClearFilters(collection string, store FilterClearer, values FilterValueRecorder) {
	store.ClearFilters()
	values.ClearFilterValues(collection)
}
