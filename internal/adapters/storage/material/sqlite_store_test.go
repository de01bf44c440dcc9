package material

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"catalog/internal/adapters/storage"
	domain "catalog/internal/domain/material"
)

func newTestStore(t *testing.T) (*SQLiteStore, storage.SQLDB) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewSQLiteStore(db), db
}

func mustMaterial(t *testing.T, id, name, unit string, cost int64) domain.Material {
	t.Helper()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m, err := domain.New(id, domain.Input{Name: name, Unit: unit, UnitCostCents: cost, Supplier: "Gordon Harris"}, now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestSQLiteStore_CRUD(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ink := mustMaterial(t, "m1", "Etching ink", domain.UnitTube, 1850)
	got, err := s.Add(ctx, ink)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if diff := cmp.Diff(ink, got); diff != "" {
		t.Errorf("Add returned (-want +got):\n%s", diff)
	}

	ink.UnitCostCents = 1999
	ink.Notes = "Charbonnel black"
	got, err = s.Update(ctx, ink)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.UnitCostCents != 1999 || got.Notes != "Charbonnel black" {
		t.Errorf("Update stored %+v", got)
	}

	if err := s.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "m1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, ink); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update deleted = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_DeleteInUse verifies the foreign key rejects deleting a material an artwork uses.
func TestSQLiteStore_DeleteInUse(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, mustMaterial(t, "m1", "Copper plate", domain.UnitPiece, 4200)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, q := range []string{
		`INSERT INTO artwork_type (id, name, created_at, updated_at) VALUES ('t1', 'Print', '', '')`,
		`INSERT INTO artwork (id, title, type_id, status, created_at, updated_at) VALUES ('a1', 'Harbour', 't1', 'draft', '', '')`,
		`INSERT INTO artwork_material (artwork_id, material_id, position, quantity) VALUES ('a1', 'm1', 0, 1)`,
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}

	if err := s.Delete(ctx, "m1"); err == nil {
		t.Fatal("expected foreign key error deleting a used material")
	}
	if _, err := s.GetByID(ctx, "m1"); err != nil {
		t.Errorf("material should survive a rejected delete: %v", err)
	}
}
