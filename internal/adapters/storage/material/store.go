package material

import (
	"context"

	domain "catalog/internal/domain/material"
)

// Store persists Material state. It satisfies the entity-state DataPort.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Material, error)
	GetByID(ctx context.Context, id string) (domain.Material, error)
	Add(ctx context.Context, value domain.Material) (domain.Material, error)
	Update(ctx context.Context, value domain.Material) (domain.Material, error)
	Delete(ctx context.Context, id string) error
}
