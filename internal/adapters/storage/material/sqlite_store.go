package material

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog/internal/adapters/storage"
	domain "catalog/internal/domain/material"
)

const selectColumns = "SELECT id, name, unit, unit_cost_cents, supplier, notes, created_at, updated_at FROM material"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new MaterialStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetAll retrieves every Material ordered by name.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.Material, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Material
	for rows.Next() {
		entity, err := scanMaterial(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetByID retrieves a Material by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Material, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanMaterial(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Material{}, fmt.Errorf("material %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Add inserts a new Material and returns the stored row.
// PRE: entity has been validated; id is unused
// POST: Entity is persisted
func (s *SQLiteStore) Add(ctx context.Context, entity domain.Material) (domain.Material, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO material (id, name, unit, unit_cost_cents, supplier, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID, entity.Name, entity.Unit, entity.UnitCostCents, entity.Supplier, entity.Notes,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	if err != nil {
		return domain.Material{}, fmt.Errorf("insert material: %w", err)
	}
	return s.GetByID(ctx, entity.ID)
}

// Update overwrites an existing Material and returns the stored row.
// PRE: entity has been validated
// POST: Row is updated, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Material) (domain.Material, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE material SET name = ?, unit = ?, unit_cost_cents = ?, supplier = ?, notes = ?, updated_at = ? WHERE id = ?",
		entity.Name, entity.Unit, entity.UnitCostCents, entity.Supplier, entity.Notes,
		storage.FormatTime(entity.UpdatedAt), entity.ID,
	)
	if err != nil {
		return domain.Material{}, fmt.Errorf("update material: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Material{}, err
	} else if n == 0 {
		return domain.Material{}, fmt.Errorf("material %s: %w", entity.ID, storage.ErrNotFound)
	}
	return s.GetByID(ctx, entity.ID)
}

// Delete removes a Material. Materials still used by an artwork are rejected by the foreign key.
// PRE: id is non-empty
// POST: Row is removed, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM material WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("material %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanMaterial(scan func(dest ...any) error) (domain.Material, error) {
	var (
		entity           domain.Material
		created, updated string
	)
	err := scan(&entity.ID, &entity.Name, &entity.Unit, &entity.UnitCostCents,
		&entity.Supplier, &entity.Notes, &created, &updated)
	if err != nil {
		return domain.Material{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(created); err != nil {
		return domain.Material{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updated); err != nil {
		return domain.Material{}, err
	}
	return entity, nil
}
