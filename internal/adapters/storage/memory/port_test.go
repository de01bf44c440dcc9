package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"catalog/internal/adapters/storage"
	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/material"
)

var _ entitystate.DataPort[material.Material] = (*Port[material.Material])(nil)

func TestPort_CRUD(t *testing.T) {
	ctx := context.Background()
	p := NewPort(material.Material{ID: "m1", Name: "Linen", Unit: material.UnitMetre})

	if _, err := p.Add(ctx, material.Material{ID: "m2", Name: "Gesso", Unit: material.UnitMillilitre}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := p.Add(ctx, material.Material{ID: "m1", Name: "Again"}); !errors.Is(err, entitystate.ErrDuplicateID) {
		t.Errorf("duplicate Add = %v, want ErrDuplicateID", err)
	}
	if _, err := p.Update(ctx, material.Material{ID: "m1", Name: "Belgian linen", Unit: material.UnitMetre}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := p.Delete(ctx, "m2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Delete(ctx, "m2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
	if _, err := p.Update(ctx, material.Material{ID: "zz"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}

	all, err := p.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	want := []material.Material{{ID: "m1", Name: "Belgian linen", Unit: material.UnitMetre}}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("GetAll (-want +got):\n%s", diff)
	}
	if p.Calls(OpAdd) != 2 || p.Calls(OpDelete) != 2 || p.Calls(OpGetAll) != 1 {
		t.Errorf("call counts add=%d delete=%d get_all=%d", p.Calls(OpAdd), p.Calls(OpDelete), p.Calls(OpGetAll))
	}
}

// TestPort_CopiesOnBoundary verifies callers cannot mutate stored entities.
func TestPort_CopiesOnBoundary(t *testing.T) {
	ctx := context.Background()
	seed := artwork.Artwork{ID: "a1", Tags: []string{"oil"}}
	p := NewPort(seed)
	seed.Tags[0] = "mutated"

	all, _ := p.GetAll(ctx)
	all[0].Tags[0] = "also mutated"

	again, _ := p.GetAll(ctx)
	if again[0].Tags[0] != "oil" {
		t.Errorf("stored tags = %v, want [oil]", again[0].Tags)
	}
}

func TestPort_FailureInjection(t *testing.T) {
	ctx := context.Background()
	p := NewPort[material.Material]()
	boom := errors.New("backend unavailable")

	p.FailNext(OpAdd, boom)
	if _, err := p.Add(ctx, material.Material{ID: "m1"}); !errors.Is(err, boom) {
		t.Errorf("Add = %v, want injected error", err)
	}
	if len(p.Items()) != 0 {
		t.Error("failed Add must not store the entity")
	}

	p.FailNext(OpAdd, nil)
	if _, err := p.Add(ctx, material.Material{ID: "m1"}); err != nil {
		t.Errorf("Add after clearing failure: %v", err)
	}
}

func TestPort_LatencyHonoursContext(t *testing.T) {
	p := NewPort[material.Material]().WithLatency(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.GetAll(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetAll = %v, want DeadlineExceeded", err)
	}
}

func TestPort_Canonicalizer(t *testing.T) {
	stamped := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewPort[material.Material]().WithCanonicalizer(func(m material.Material) material.Material {
		m.UpdatedAt = stamped
		return m
	})
	got, err := p.Add(context.Background(), material.Material{ID: "m1"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !got.UpdatedAt.Equal(stamped) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, stamped)
	}
}
