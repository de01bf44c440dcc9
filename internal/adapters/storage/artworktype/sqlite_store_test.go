package artworktype

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"catalog/internal/adapters/storage"
	domain "catalog/internal/domain/artworktype"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewSQLiteStore(db)
}

func mustType(t *testing.T, id, name string) domain.ArtworkType {
	t.Helper()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	at, err := domain.New(id, domain.Input{Name: name, HourlyRateCents: 4500, MarkupPercent: 40}, now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return at
}

func TestSQLiteStore_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	etching := mustType(t, "t1", "Print")
	added, err := s.Add(ctx, etching)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if diff := cmp.Diff(etching, added); diff != "" {
		t.Errorf("Add returned (-want +got):\n%s", diff)
	}
	if _, err := s.Add(ctx, mustType(t, "t0", "Oil Painting")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	var names []string
	for _, at := range all {
		names = append(names, at.Name)
	}
	if diff := cmp.Diff([]string{"Oil Painting", "Print"}, names); diff != "" {
		t.Errorf("GetAll order (-want +got):\n%s", diff)
	}

	changed, err := etching.Update(domain.Input{Name: "Screen Print", HourlyRateCents: 5000, MarkupPercent: 60}, etching.UpdatedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Update domain: %v", err)
	}
	got, err := s.Update(ctx, changed)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Screen Print" || got.MarkupPercent != 60 || !got.CreatedAt.Equal(etching.CreatedAt) {
		t.Errorf("Update stored %+v", got)
	}

	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_MissingRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, mustType(t, "ghost", "Ghost")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update unknown = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete unknown = %v, want ErrNotFound", err)
	}
	all, err := s.GetAll(ctx)
	if err != nil || len(all) != 0 {
		t.Errorf("GetAll on empty = %v, %v", all, err)
	}
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Add(ctx, mustType(t, "t1", "Print")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add(ctx, mustType(t, "t1", "Sculpture")); err == nil {
		t.Error("expected primary key violation on duplicate id")
	}
}
