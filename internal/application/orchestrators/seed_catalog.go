package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// SeedCatalogDeps holds the data ports the sample catalog is written through.
type SeedCatalogDeps struct {
	ArtworkTypes entitystate.DataPort[artworktype.ArtworkType]
	Materials    entitystate.DataPort[material.Material]
	Artworks     entitystate.DataPort[artwork.Artwork]
	Now          func() time.Time // optional
}

// SeedCatalogResult counts the entities written.
type SeedCatalogResult struct {
	ArtworkTypes int
	Materials    int
	Artworks     int
}

type seedType struct {
	id string
	in artworktype.Input
}

type seedMaterial struct {
	id string
	in material.Input
}

type seedArtwork struct {
	id string
	in artwork.Input
}

var sampleTypes = []seedType{
	{"type-oil", artworktype.Input{Name: "Oil Painting", Description: "Oil on canvas or board.", HourlyRateCents: 6000, MarkupPercent: 80}},
	{"type-print", artworktype.Input{Name: "Intaglio Print", Description: "Etchings and drypoints, editioned.", HourlyRateCents: 4500, MarkupPercent: 60}},
	{"type-ceramic", artworktype.Input{Name: "Ceramic", Description: "Hand-built and thrown stoneware.", HourlyRateCents: 4000, MarkupPercent: 50}},
}

var sampleMaterials = []seedMaterial{
	{"mat-linen", material.Input{Name: "Primed linen", Unit: material.UnitMetre, UnitCostCents: 5200, Supplier: "Gordon Harris"}},
	{"mat-oil-white", material.Input{Name: "Titanium white", Unit: material.UnitTube, UnitCostCents: 2450, Supplier: "Gordon Harris"}},
	{"mat-copper", material.Input{Name: "Copper plate 1.2mm", Unit: material.UnitPiece, UnitCostCents: 3800, Supplier: "Printmakers Supply"}},
	{"mat-paper", material.Input{Name: "Hahnemühle etching paper", Unit: material.UnitSheet, UnitCostCents: 950, Supplier: "Printmakers Supply"}},
	{"mat-clay", material.Input{Name: "Stoneware clay", Unit: material.UnitKilogram, UnitCostCents: 420, Supplier: "Clay Shop"}},
}

var sampleArtworks = []seedArtwork{
	{"art-harbour", artwork.Input{
		Title:       "Harbour at Dusk",
		TypeID:      "type-oil",
		Year:        2025,
		Status:      artwork.StatusAvailable,
		Dimensions:  artwork.Dimensions{WidthCM: 90, HeightCM: 60, DepthCM: 3},
		Materials:   []artwork.MaterialUsage{{MaterialID: "mat-linen", Quantity: 0.8}, {MaterialID: "mat-oil-white", Quantity: 1.5}},
		Hours:       32,
		PriceCents:  360000,
		Description: "Late light over the *inner harbour*, painted on site across three evenings.",
		Tags:        []string{"landscape", "harbour"},
	}},
	{"art-kelp", artwork.Input{
		Title:       "Kelp Study III",
		TypeID:      "type-print",
		Year:        2024,
		Status:      artwork.StatusSold,
		Dimensions:  artwork.Dimensions{WidthCM: 30, HeightCM: 40},
		Materials:   []artwork.MaterialUsage{{MaterialID: "mat-copper", Quantity: 1}, {MaterialID: "mat-paper", Quantity: 2}},
		Hours:       9,
		PriceCents:  68000,
		Description: "Hard-ground etching with aquatint. Edition of 12.",
		Tags:        []string{"botanical", "etching"},
	}},
	{"art-bowl", artwork.Input{
		Title:     "Tidal Bowl",
		TypeID:    "type-ceramic",
		Status:    artwork.StatusDraft,
		Materials: []artwork.MaterialUsage{{MaterialID: "mat-clay", Quantity: 2.5}},
		Hours:     4,
		Tags:      []string{"functional"},
	}},
}

// ExecuteSeedCatalog writes the sample catalog when no artwork types exist yet.
// PRE: ports point at an initialized backend
// POST: sample types, materials and artworks exist; an already seeded backend is left alone
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) (SeedCatalogResult, error) {
	existing, err := deps.ArtworkTypes.GetAll(ctx)
	if err != nil {
		return SeedCatalogResult{}, err
	}
	if len(existing) > 0 {
		slog.Info("seed_event", "event", "catalog_seed_skipped", "artwork_types", len(existing))
		return SeedCatalogResult{}, nil
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	var res SeedCatalogResult
	for _, s := range sampleTypes {
		t, err := artworktype.New(s.id, s.in, now)
		if err != nil {
			return res, fmt.Errorf("sample type %s: %w", s.id, err)
		}
		if _, err := deps.ArtworkTypes.Add(ctx, t); err != nil {
			return res, err
		}
		res.ArtworkTypes++
	}
	for _, s := range sampleMaterials {
		m, err := material.New(s.id, s.in, now)
		if err != nil {
			return res, fmt.Errorf("sample material %s: %w", s.id, err)
		}
		if _, err := deps.Materials.Add(ctx, m); err != nil {
			return res, err
		}
		res.Materials++
	}
	for i, s := range sampleArtworks {
		// Stagger creation so newest-first ordering is stable.
		a, err := artwork.New(s.id, s.in, now.Add(time.Duration(i)*time.Second))
		if err != nil {
			return res, fmt.Errorf("sample artwork %s: %w", s.id, err)
		}
		if _, err := deps.Artworks.Add(ctx, a); err != nil {
			return res, err
		}
		res.Artworks++
	}
	slog.Info("seed_event", "event", "catalog_seeded", "artwork_types", res.ArtworkTypes, "materials", res.Materials, "artworks", res.Artworks)
	return res, nil
}
