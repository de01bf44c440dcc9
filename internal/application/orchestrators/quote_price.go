package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/material"
	"catalog/internal/domain/pricing"
)

// MaterialLister lists the materials currently held in a workspace.
type MaterialLister interface {
	Entities() []material.Material
}

// QuoteArtworkPriceDeps holds dependencies for QuoteArtworkPrice.
type QuoteArtworkPriceDeps struct {
	Artworks  ArtworkLookup
	Types     TypeLookup
	Materials MaterialLister
}

// ExecuteQuoteArtworkPrice prices an artwork from the workspace's current state.
// PRE: artworkID names an artwork whose type and materials are loaded
// POST: returns an itemised breakdown; nothing is written
func ExecuteQuoteArtworkPrice(_ context.Context, artworkID string, deps QuoteArtworkPriceDeps) (pricing.Breakdown, error) {
	a, ok := deps.Artworks.Get(artworkID)
	if !ok {
		return pricing.Breakdown{}, fmt.Errorf("%w: %s", entitystate.ErrNotFound, artworkID)
	}
	t, ok := deps.Types.Get(a.TypeID)
	if !ok {
		return pricing.Breakdown{}, fmt.Errorf("%w: %s", ErrUnknownType, a.TypeID)
	}
	materials := make(map[string]material.Material)
	for _, m := range deps.Materials.Entities() {
		materials[m.ID] = m
	}
	return pricing.Quote(pricing.Request{
		Type:      t,
		Usages:    a.Materials,
		Materials: materials,
		Hours:     a.Hours,
	})
}

// ApplySuggestedPriceDeps holds dependencies for ApplySuggestedPrice.
type ApplySuggestedPriceDeps struct {
	Artworks  ArtworkWriter
	Types     TypeLookup
	Materials MaterialLister
}

// ApplySuggestedPriceResult carries the quote and the repriced artwork.
type ApplySuggestedPriceResult struct {
	Quote   pricing.Breakdown `json:"quote"`
	Artwork artwork.Artwork   `json:"artwork"`
}

// ExecuteApplySuggestedPrice quotes an artwork and writes the total as its price.
// PRE: the artwork is not sold (a sold price is locked)
// POST: price updated through the optimistic store, rolled back on port failure;
// a failed quote is recorded in the artwork store's status
func ExecuteApplySuggestedPrice(ctx context.Context, artworkID string, deps ApplySuggestedPriceDeps) (ApplySuggestedPriceResult, error) {
	quote, err := ExecuteQuoteArtworkPrice(ctx, artworkID, QuoteArtworkPriceDeps{
		Artworks:  deps.Artworks,
		Types:     deps.Types,
		Materials: deps.Materials,
	})
	if err != nil {
		return ApplySuggestedPriceResult{}, deps.Artworks.Reject("update", artworkID, err)
	}
	current, _ := deps.Artworks.Get(artworkID)
	in := artwork.InputFrom(current)
	in.PriceCents = quote.TotalCents

	updated, err := deps.Artworks.Update(ctx, artworkID, in)
	if err != nil {
		return ApplySuggestedPriceResult{}, err
	}
	slog.Info("catalog_event", "event", "price_applied", "artwork_id", artworkID,
		"old_cents", current.PriceCents, "new_cents", quote.TotalCents)
	return ApplySuggestedPriceResult{Quote: quote, Artwork: updated}, nil
}
