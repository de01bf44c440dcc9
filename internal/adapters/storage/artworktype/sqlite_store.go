package artworktype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog/internal/adapters/storage"
	domain "catalog/internal/domain/artworktype"
)

const selectColumns = "SELECT id, name, description, hourly_rate_cents, markup_percent, created_at, updated_at FROM artwork_type"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new ArtworkTypeStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetAll retrieves every ArtworkType ordered by name.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.ArtworkType, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ArtworkType
	for rows.Next() {
		entity, err := scanArtworkType(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetByID retrieves an ArtworkType by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ArtworkType, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanArtworkType(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArtworkType{}, fmt.Errorf("artwork type %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Add inserts a new ArtworkType and returns the stored row.
// PRE: entity has been validated; id is unused
// POST: Entity is persisted
func (s *SQLiteStore) Add(ctx context.Context, entity domain.ArtworkType) (domain.ArtworkType, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO artwork_type (id, name, description, hourly_rate_cents, markup_percent, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entity.ID, entity.Name, entity.Description, entity.HourlyRateCents, entity.MarkupPercent,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	if err != nil {
		return domain.ArtworkType{}, fmt.Errorf("insert artwork type: %w", err)
	}
	return s.GetByID(ctx, entity.ID)
}

// Update overwrites an existing ArtworkType and returns the stored row.
// PRE: entity has been validated
// POST: Row is updated, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Update(ctx context.Context, entity domain.ArtworkType) (domain.ArtworkType, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE artwork_type SET name = ?, description = ?, hourly_rate_cents = ?, markup_percent = ?, updated_at = ? WHERE id = ?",
		entity.Name, entity.Description, entity.HourlyRateCents, entity.MarkupPercent,
		storage.FormatTime(entity.UpdatedAt), entity.ID,
	)
	if err != nil {
		return domain.ArtworkType{}, fmt.Errorf("update artwork type: %w", err)
	}
	if err := requireRow(res, entity.ID); err != nil {
		return domain.ArtworkType{}, err
	}
	return s.GetByID(ctx, entity.ID)
}

// Delete removes an ArtworkType from the database.
// PRE: id is non-empty
// POST: Row is removed, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artwork_type WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete artwork type: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("artwork type %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanArtworkType(scan func(dest ...any) error) (domain.ArtworkType, error) {
	var (
		entity           domain.ArtworkType
		created, updated string
	)
	err := scan(&entity.ID, &entity.Name, &entity.Description, &entity.HourlyRateCents,
		&entity.MarkupPercent, &created, &updated)
	if err != nil {
		return domain.ArtworkType{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(created); err != nil {
		return domain.ArtworkType{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updated); err != nil {
		return domain.ArtworkType{}, err
	}
	return entity, nil
}
