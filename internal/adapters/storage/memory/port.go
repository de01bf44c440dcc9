// Package memory provides an in-process data port for running the catalog
// without a database and for exercising stores in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog/internal/adapters/storage"
	"catalog/internal/application/entitystate"
)

// Op names a data port operation for failure injection and call counting.
type Op string

const (
	OpGetAll Op = "get_all"
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Port is a goroutine-safe, insertion-ordered DataPort backed by a slice.
// Entities are deep-copied on the way in and out.
type Port[E entitystate.Entity[E]] struct {
	mu      sync.Mutex
	items   []E
	fail    map[Op]error
	calls   map[Op]int
	latency time.Duration
	stamp   func(E) E
}

// NewPort creates a Port holding copies of seed.
// POST: Later changes to seed are not visible through the port
func NewPort[E entitystate.Entity[E]](seed ...E) *Port[E] {
	p := &Port[E]{
		fail:  make(map[Op]error),
		calls: make(map[Op]int),
	}
	for _, e := range seed {
		p.items = append(p.items, e.Clone())
	}
	return p
}

// WithLatency makes every call sleep for d (or until ctx is done).
func (p *Port[E]) WithLatency(d time.Duration) *Port[E] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = d
	return p
}

// WithCanonicalizer sets a function applied to every added or updated entity
// before it is stored, standing in for server-side normalization.
func (p *Port[E]) WithCanonicalizer(fn func(E) E) *Port[E] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stamp = fn
	return p
}

// FailNext makes every call of op return err until cleared with a nil err.
// POST: Calls(op) still counts the failed calls
func (p *Port[E]) FailNext(op Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.fail, op)
		return
	}
	p.fail[op] = err
}

// Calls returns how many times op has been invoked.
func (p *Port[E]) Calls(op Op) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// Items returns a copy of the stored entities.
func (p *Port[E]) Items() []E {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]E, len(p.items))
	for i, e := range p.items {
		out[i] = e.Clone()
	}
	return out
}

// GetAll returns copies of every stored entity.
func (p *Port[E]) GetAll(ctx context.Context) ([]E, error) {
	if err := p.enter(ctx, OpGetAll); err != nil {
		return nil, err
	}
	return p.Items(), nil
}

// Add stores entity. An id already present is rejected.
// PRE: entity has a non-empty id
// POST: A copy is appended; the canonical copy is returned
func (p *Port[E]) Add(ctx context.Context, entity E) (E, error) {
	var zero E
	if err := p.enter(ctx, OpAdd); err != nil {
		return zero, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexOf(entity.EntityID()) >= 0 {
		return zero, fmt.Errorf("%w: %s", entitystate.ErrDuplicateID, entity.EntityID())
	}
	stored := p.canonical(entity)
	p.items = append(p.items, stored)
	return stored.Clone(), nil
}

// Update replaces the stored entity with the same id.
// POST: Returns storage.ErrNotFound when no entity has the id
func (p *Port[E]) Update(ctx context.Context, entity E) (E, error) {
	var zero E
	if err := p.enter(ctx, OpUpdate); err != nil {
		return zero, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(entity.EntityID())
	if i < 0 {
		return zero, fmt.Errorf("%s: %w", entity.EntityID(), storage.ErrNotFound)
	}
	stored := p.canonical(entity)
	p.items[i] = stored
	return stored.Clone(), nil
}

// Delete removes the entity with id.
// POST: Returns storage.ErrNotFound when no entity has the id; order of the rest is kept
func (p *Port[E]) Delete(ctx context.Context, id string) error {
	if err := p.enter(ctx, OpDelete); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	return nil
}

// enter counts the call, waits out any latency and returns an injected failure.
func (p *Port[E]) enter(ctx context.Context, op Op) error {
	p.mu.Lock()
	p.calls[op]++
	latency := p.latency
	injected := p.fail[op]
	p.mu.Unlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return injected
}

func (p *Port[E]) indexOf(id string) int {
	for i, e := range p.items {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}

func (p *Port[E]) canonical(e E) E {
	c := e.Clone()
	if p.stamp != nil {
		c = p.stamp(c)
	}
	return c
}

