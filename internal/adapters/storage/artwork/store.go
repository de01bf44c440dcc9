package artwork

import (
	"context"

	domain "catalog/internal/domain/artwork"
)

// Store persists Artwork state including material usage. It satisfies the entity-state DataPort.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Artwork, error)
	GetByID(ctx context.Context, id string) (domain.Artwork, error)
	Add(ctx context.Context, value domain.Artwork) (domain.Artwork, error)
	Update(ctx context.Context, value domain.Artwork) (domain.Artwork, error)
	Delete(ctx context.Context, id string) error
}
