package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

var (
	ErrInUse           = errors.New("still used by an artwork")
	ErrUnknownType     = errors.New("artwork type does not exist")
	ErrUnknownMaterial = errors.New("material does not exist")
)

// ArtworkLookup finds an artwork in a workspace.
type ArtworkLookup interface {
	Get(id string) (artwork.Artwork, bool)
}

// Rejecter records an intent refused before it reached a store.
type Rejecter interface {
	Reject(op, id string, err error) error
}

// ArtworkWriter is the part of the artwork store the write orchestrators need.
type ArtworkWriter interface {
	Add(ctx context.Context, in artwork.Input) (artwork.Artwork, error)
	Update(ctx context.Context, id string, in artwork.Input) (artwork.Artwork, error)
	ArtworkLookup
	Rejecter
}

// ArtworkLister lists the artworks currently held in a workspace.
type ArtworkLister interface {
	Entities() []artwork.Artwork
}

// TypeLookup finds an artwork type in a workspace.
type TypeLookup interface {
	Get(id string) (artworktype.ArtworkType, bool)
}

// MaterialLookup finds a material in a workspace.
type MaterialLookup interface {
	Get(id string) (material.Material, bool)
}

// SaveArtworkDeps holds dependencies for CreateArtwork and UpdateArtwork.
type SaveArtworkDeps struct {
	Artworks  ArtworkWriter
	Types     TypeLookup
	Materials MaterialLookup
}

// UpdateArtworkInput carries input for the update orchestrator.
type UpdateArtworkInput struct {
	ID      string
	Artwork artwork.Input
}

// ExecuteCreateArtwork adds an artwork after checking its type and materials exist.
// PRE: in.TypeID and every usage refer to entities in the workspace
// POST: artwork added optimistically and confirmed by the port, or an error returned
// and recorded in the artwork store's status
func ExecuteCreateArtwork(ctx context.Context, in artwork.Input, deps SaveArtworkDeps) (artwork.Artwork, error) {
	if err := checkReferences(in, deps); err != nil {
		return artwork.Artwork{}, deps.Artworks.Reject("add", "", err)
	}
	return deps.Artworks.Add(ctx, in)
}

// ExecuteUpdateArtwork updates an artwork after checking its type and materials exist.
// An unknown id is left to the store, which reports not found.
// PRE: input.ID is non-empty
// POST: artwork replaced and confirmed by the port, or rolled back; every error
// is recorded in the artwork store's status
func ExecuteUpdateArtwork(ctx context.Context, input UpdateArtworkInput, deps SaveArtworkDeps) (artwork.Artwork, error) {
	if _, ok := deps.Artworks.Get(input.ID); ok {
		if err := checkReferences(input.Artwork, deps); err != nil {
			return artwork.Artwork{}, deps.Artworks.Reject("update", input.ID, err)
		}
	}
	return deps.Artworks.Update(ctx, input.ID, input.Artwork)
}

// checkReferences reports a missing type or material as a validation error.
// An empty TypeID is left to the domain validator.
func checkReferences(in artwork.Input, deps SaveArtworkDeps) error {
	if in.TypeID != "" {
		if _, ok := deps.Types.Get(in.TypeID); !ok {
			return &entitystate.ValidationError{Err: fmt.Errorf("%w: %s", ErrUnknownType, in.TypeID)}
		}
	}
	for _, u := range in.Materials {
		if u.MaterialID == "" {
			continue
		}
		if _, ok := deps.Materials.Get(u.MaterialID); !ok {
			return &entitystate.ValidationError{Err: fmt.Errorf("%w: %s", ErrUnknownMaterial, u.MaterialID)}
		}
	}
	return nil
}

// Deleter removes an entity by id.
type Deleter interface {
	Delete(ctx context.Context, id string) error
	Rejecter
}

// DeleteReferencedDeps holds dependencies for deleting a type or material.
type DeleteReferencedDeps struct {
	Artworks ArtworkLister
	Store    Deleter
}

// ExecuteDeleteMaterial deletes a material no artwork uses.
// PRE: id is non-empty
// POST: material removed, or ErrInUse recorded in the status with the collection untouched
func ExecuteDeleteMaterial(ctx context.Context, id string, deps DeleteReferencedDeps) error {
	return deleteUnreferenced(ctx, "material", id, artwork.UsesMaterial(id), deps)
}

// ExecuteDeleteArtworkType deletes an artwork type no artwork belongs to.
// PRE: id is non-empty
// POST: type removed, or ErrInUse recorded in the status with the collection untouched
func ExecuteDeleteArtworkType(ctx context.Context, id string, deps DeleteReferencedDeps) error {
	return deleteUnreferenced(ctx, "artwork_type", id, artwork.OfType(id), deps)
}

func deleteUnreferenced(ctx context.Context, kind, id string, uses func(artwork.Artwork) bool, deps DeleteReferencedDeps) error {
	for _, a := range deps.Artworks.Entities() {
		if uses(a) {
			slog.Info("catalog_event", "event", "delete_blocked", "kind", kind, "id", id, "artwork_id", a.ID)
			return deps.Store.Reject("delete", id, fmt.Errorf("%s %s: %w (%s)", kind, id, ErrInUse, a.Title))
		}
	}
	return deps.Store.Delete(ctx, id)
}
