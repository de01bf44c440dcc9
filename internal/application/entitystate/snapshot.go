package entitystate

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Cloner is implemented by values that can produce a deep, independent copy
// of themselves. Clone must copy nested slices and maps, not share them.
type Cloner[E any] interface {
	Clone() E
}

// Snapshot keeps the last-known-good copy of a collection.
// Only the most recent snapshot is retained.
type Snapshot[E Cloner[E]] struct {
	items []E
	taken bool
}

// Take stores a deep copy of items, replacing any previous snapshot.
// POST: later mutations of items (or their nested values) are not visible through the snapshot
func (s *Snapshot[E]) Take(items []E) {
	s.items = cloneAll(items)
	s.taken = true
}

// Restore returns a fresh deep copy of the stored collection.
// The live collection is never touched here; the caller assigns the result.
// POST: ok is false when no snapshot has been taken
func (s *Snapshot[E]) Restore() (items []E, ok bool) {
	if !s.taken {
		return nil, false
	}
	return cloneAll(s.items), true
}

// Taken reports whether a snapshot is held.
func (s *Snapshot[E]) Taken() bool {
	return s.taken
}

// HasChange reports whether live differs structurally from the snapshot.
// With no snapshot, a non-empty live collection counts as a change.
func (s *Snapshot[E]) HasChange(live []E) bool {
	if !s.taken {
		return len(live) != 0
	}
	return !cmp.Equal(live, s.items, cmpopts.EquateEmpty())
}

func cloneAll[E Cloner[E]](items []E) []E {
	if items == nil {
		return nil
	}
	out := make([]E, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// sameEntity reports whether a and b are structurally equal.
func sameEntity[E any](a, b E) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
