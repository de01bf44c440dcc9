// Package workspace scopes one set of entity stores to each login session.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// Store aliases for the three catalog collections.
type (
	ArtworkStore  = entitystate.Store[artwork.FilterKey, artwork.Artwork, artwork.Input]
	MaterialStore = entitystate.Store[material.FilterKey, material.Material, material.Input]
	TypeStore     = entitystate.Store[artworktype.FilterKey, artworktype.ArtworkType, artworktype.Input]
)

// Collection names used in logs, metrics and filter bookkeeping.
const (
	CollectionArtworks     = "artworks"
	CollectionMaterials    = "materials"
	CollectionArtworkTypes = "artwork_types"
)

// Ports bundles the data ports backing each collection.
type Ports struct {
	Artworks     entitystate.DataPort[artwork.Artwork]
	Materials    entitystate.DataPort[material.Material]
	ArtworkTypes entitystate.DataPort[artworktype.ArtworkType]
}

// Config tunes the stores a workspace creates.
type Config struct {
	IdleTTL              time.Duration
	RollbackOnAddFailure bool
	Recorder             entitystate.Recorder // optional
	Logger               *slog.Logger         // optional
	Now                  func() time.Time     // optional, time.Now when nil
	NewID                func() string        // optional, uuid when nil
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Workspace is the editable catalog state of one session.
type Workspace struct {
	ID           string
	Artworks     *ArtworkStore
	Materials    *MaterialStore
	ArtworkTypes *TypeStore

	mu       sync.Mutex
	lastUsed time.Time
	filters  map[string]map[string]string

	loadMu sync.Mutex
	loaded bool
}

// New creates an unloaded workspace.
// PRE: every port in ports is non-nil
func New(id string, ports Ports, cfg Config) *Workspace {
	opts := entitystate.Options{RollbackOnAddFailure: cfg.RollbackOnAddFailure}
	return &Workspace{
		ID: id,
		Artworks: entitystate.New[artwork.FilterKey](CollectionArtworks, entitystate.Deps[artwork.Artwork, artwork.Input]{
			Validator: artwork.Validator{NewID: cfg.NewID, Now: cfg.Now},
			Port:      ports.Artworks,
			Recorder:  cfg.Recorder,
			Logger:    cfg.Logger,
		}, opts),
		Materials: entitystate.New[material.FilterKey](CollectionMaterials, entitystate.Deps[material.Material, material.Input]{
			Validator: material.Validator{NewID: cfg.NewID, Now: cfg.Now},
			Port:      ports.Materials,
			Recorder:  cfg.Recorder,
			Logger:    cfg.Logger,
		}, opts),
		ArtworkTypes: entitystate.New[artworktype.FilterKey](CollectionArtworkTypes, entitystate.Deps[artworktype.ArtworkType, artworktype.Input]{
			Validator: artworktype.Validator{NewID: cfg.NewID, Now: cfg.Now},
			Port:      ports.ArtworkTypes,
			Recorder:  cfg.Recorder,
			Logger:    cfg.Logger,
		}, opts),
		lastUsed: cfg.now(),
		filters:  make(map[string]map[string]string),
	}
}

// Load fetches every collection. Reference collections load first so
// artwork views never point at types or materials that are not there yet.
// POST: each store's status reflects its own load; the joined error lists every failure
func (w *Workspace) Load(ctx context.Context) error {
	errT := w.ArtworkTypes.LoadAll(ctx)
	errM := w.Materials.LoadAll(ctx)
	errA := w.Artworks.LoadAll(ctx)
	return errors.Join(errT, errM, errA)
}

// ensureLoaded runs Load once successfully; a failed load is retried on the next call.
func (w *Workspace) ensureLoaded(ctx context.Context) error {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	if w.loaded {
		return nil
	}
	if err := w.Load(ctx); err != nil {
		return err
	}
	w.loaded = true
	return nil
}

// Touch marks the workspace as used at now.
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastUsed = now
}

// LastUsed returns when the workspace was last touched.
func (w *Workspace) LastUsed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// RecordFilter remembers the raw value behind a filter so views can echo it.
// An empty value forgets the key.
func (w *Workspace) RecordFilter(collection, key, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	values := w.filters[collection]
	if value == "" {
		delete(values, key)
		return
	}
	if values == nil {
		values = make(map[string]string)
		w.filters[collection] = values
	}
	values[key] = value
}

// ClearFilterValues forgets every recorded value for collection.
func (w *Workspace) ClearFilterValues(collection string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.filters, collection)
}

// FilterValues returns a copy of the recorded filter values for collection.
func (w *Workspace) FilterValues(collection string) map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.filters[collection]))
	for k, v := range w.filters[collection] {
		out[k] = v
	}
	return out
}
