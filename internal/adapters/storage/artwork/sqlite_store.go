package artwork

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"catalog/internal/adapters/storage"
	domain "catalog/internal/domain/artwork"
)

const selectColumns = `SELECT id, title, type_id, year, status, width_cm, height_cm, depth_cm,
	hours, price_cents, description, tags, created_at, updated_at FROM artwork`

// SQLiteStore implements Store using SQLite. Material usage lives in artwork_material.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new ArtworkStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetAll retrieves every Artwork, newest first, with its material usage.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.Artwork, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	var results []domain.Artwork
	for rows.Next() {
		entity, err := scanArtwork(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, entity)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	usage, err := s.usageByArtwork(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Materials = usage[results[i].ID]
	}
	return results, nil
}

// GetByID retrieves an Artwork by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Artwork, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanArtwork(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Artwork{}, fmt.Errorf("artwork %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Artwork{}, err
	}
	usage, err := s.usageByArtwork(ctx, id)
	if err != nil {
		return domain.Artwork{}, err
	}
	entity.Materials = usage[id]
	return entity, nil
}

// Add inserts a new Artwork with its material usage and returns the stored row.
// PRE: entity has been validated; referenced type and materials exist
// POST: Artwork and usage rows persisted atomically
func (s *SQLiteStore) Add(ctx context.Context, entity domain.Artwork) (domain.Artwork, error) {
	tags, err := encodeTags(entity.Tags)
	if err != nil {
		return domain.Artwork{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Artwork{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO artwork (id, title, type_id, year, status, width_cm, height_cm, depth_cm,
		hours, price_cents, description, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, entity.Title, entity.TypeID, entity.Year, string(entity.Status),
		entity.Dimensions.WidthCM, entity.Dimensions.HeightCM, entity.Dimensions.DepthCM,
		entity.Hours, entity.PriceCents, entity.Description, tags,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("insert artwork: %w", err)
	}
	if err := insertUsage(ctx, tx, entity.ID, entity.Materials); err != nil {
		return domain.Artwork{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Artwork{}, err
	}
	return s.GetByID(ctx, entity.ID)
}

// Update overwrites an existing Artwork and replaces its material usage.
// PRE: entity has been validated
// POST: Row and usage updated atomically, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Artwork) (domain.Artwork, error) {
	tags, err := encodeTags(entity.Tags)
	if err != nil {
		return domain.Artwork{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Artwork{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE artwork SET title = ?, type_id = ?, year = ?, status = ?,
		width_cm = ?, height_cm = ?, depth_cm = ?, hours = ?, price_cents = ?, description = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		entity.Title, entity.TypeID, entity.Year, string(entity.Status),
		entity.Dimensions.WidthCM, entity.Dimensions.HeightCM, entity.Dimensions.DepthCM,
		entity.Hours, entity.PriceCents, entity.Description, tags,
		storage.FormatTime(entity.UpdatedAt), entity.ID,
	)
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("update artwork: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Artwork{}, err
	}
	if n == 0 {
		return domain.Artwork{}, fmt.Errorf("artwork %s: %w", entity.ID, storage.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artwork_material WHERE artwork_id = ?", entity.ID); err != nil {
		return domain.Artwork{}, fmt.Errorf("clear artwork materials: %w", err)
	}
	if err := insertUsage(ctx, tx, entity.ID, entity.Materials); err != nil {
		return domain.Artwork{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Artwork{}, err
	}
	return s.GetByID(ctx, entity.ID)
}

// Delete removes an Artwork; its usage rows cascade.
// PRE: id is non-empty
// POST: Row is removed, or storage.ErrNotFound when the id is unknown
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM artwork WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete artwork: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("artwork %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// usageByArtwork loads material usage keyed by artwork id; an empty id loads all.
func (s *SQLiteStore) usageByArtwork(ctx context.Context, id string) (map[string][]domain.MaterialUsage, error) {
	query := "SELECT artwork_id, material_id, quantity FROM artwork_material"
	var args []any
	if id != "" {
		query += " WHERE artwork_id = ?"
		args = append(args, id)
	}
	query += " ORDER BY artwork_id, position"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := make(map[string][]domain.MaterialUsage)
	for rows.Next() {
		var artworkID string
		var u domain.MaterialUsage
		if err := rows.Scan(&artworkID, &u.MaterialID, &u.Quantity); err != nil {
			return nil, err
		}
		usage[artworkID] = append(usage[artworkID], u)
	}
	return usage, rows.Err()
}

func insertUsage(ctx context.Context, tx *sql.Tx, artworkID string, usage []domain.MaterialUsage) error {
	for i, u := range usage {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO artwork_material (artwork_id, material_id, position, quantity) VALUES (?, ?, ?, ?)",
			artworkID, u.MaterialID, i, u.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert artwork material %s: %w", u.MaterialID, err)
		}
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func scanArtwork(scan func(dest ...any) error) (domain.Artwork, error) {
	var (
		entity           domain.Artwork
		status, tags     string
		created, updated string
	)
	err := scan(&entity.ID, &entity.Title, &entity.TypeID, &entity.Year, &status,
		&entity.Dimensions.WidthCM, &entity.Dimensions.HeightCM, &entity.Dimensions.DepthCM,
		&entity.Hours, &entity.PriceCents, &entity.Description, &tags, &created, &updated)
	if err != nil {
		return domain.Artwork{}, err
	}
	entity.Status = domain.Status(status)
	if err := json.Unmarshal([]byte(tags), &entity.Tags); err != nil {
		return domain.Artwork{}, fmt.Errorf("decode tags for %s: %w", entity.ID, err)
	}
	if len(entity.Tags) == 0 {
		entity.Tags = nil
	}
	if entity.CreatedAt, err = storage.ParseTime(created); err != nil {
		return domain.Artwork{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updated); err != nil {
		return domain.Artwork{}, err
	}
	return entity, nil
}
