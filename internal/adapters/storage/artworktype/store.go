package artworktype

import (
	"context"

	domain "catalog/internal/domain/artworktype"
)

// Store persists ArtworkType state. It satisfies the entity-state DataPort.
type Store interface {
	GetAll(ctx context.Context) ([]domain.ArtworkType, error)
	GetByID(ctx context.Context, id string) (domain.ArtworkType, error)
	Add(ctx context.Context, value domain.ArtworkType) (domain.ArtworkType, error)
	Update(ctx context.Context, value domain.ArtworkType) (domain.ArtworkType, error)
	Delete(ctx context.Context, id string) error
}
