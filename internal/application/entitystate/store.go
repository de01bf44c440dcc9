package entitystate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Entity is an identity-bearing value that can deep-copy itself.
type Entity[E any] interface {
	Cloner[E]
	EntityID() string
}

// Validator turns raw payloads into valid entities.
type Validator[E, P any] interface {
	Create(payload P) (E, error)
	Update(current E, payload P) (E, error)
}

// DataPort performs the remote reads and writes for one entity type.
type DataPort[E any] interface {
	GetAll(ctx context.Context) ([]E, error)
	Add(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, id string) error
}

// Recorder receives the timing of every data port call.
type Recorder interface {
	RecordPortCall(store, op string, d time.Duration, err error)
}

// Deps holds the collaborators of a Store.
type Deps[E, P any] struct {
	Validator Validator[E, P]
	Port      DataPort[E]
	Recorder  Recorder     // optional
	Logger    *slog.Logger // optional, slog.Default() when nil
	Seed      []E          // optional initial collection
}

// Options tunes Store behaviour.
type Options struct {
	// RollbackOnAddFailure restores the pre-add collection when the port
	// rejects an add. When false the optimistic entity stays in place.
	RollbackOnAddFailure bool
}

// View is a consistent read of a Store taken under one lock.
type View[E any] struct {
	Entities         []E           `json:"-"`
	Filtered         []E           `json:"-"`
	Status           RequestStatus `json:"status"`
	TotalCount       int           `json:"total_count"`
	FilteredCount    int           `json:"filtered_count"`
	ActiveFilters    int           `json:"active_filters"`
	HasActiveFilters bool          `json:"has_active_filters"`
	HasChange        bool          `json:"has_change"`
}

// Store is the optimistic CRUD container for one collection.
//
// Each mutation marks the status pending, validates synchronously, applies the
// change locally, then calls the data port with the lock released. A port
// failure on Update or Delete restores the snapshot taken at the start of the
// operation. Every mutation takes a sequence token; a completion that is no
// longer the latest does not touch the status. If that stale completion is a
// port failure, only its own entity is reverted, and only while the collection
// still holds the value it wrote.
type Store[K comparable, E Entity[E], P any] struct {
	name string
	deps Deps[E, P]
	opts Options

	mu       sync.RWMutex
	items    []E
	status   StatusTracker
	snapshot Snapshot[E]
	filters  *Registry[K, E]
	seq      uint64
}

// New creates a Store named name (used in logs and metrics).
// PRE: deps.Validator and deps.Port are non-nil
// POST: status is idle; collection is a deep copy of deps.Seed
func New[K comparable, E Entity[E], P any](name string, deps Deps[E, P], opts Options) *Store[K, E, P] {
	return &Store[K, E, P]{
		name:    name,
		deps:    deps,
		opts:    opts,
		items:   cloneAll(deps.Seed),
		filters: NewRegistry[K, E](),
	}
}

// Name returns the store name.
func (s *Store[K, E, P]) Name() string {
	return s.name
}

// LoadAll replaces the collection with the port's current contents.
// POST: on failure the collection is untouched and the status holds the error
func (s *Store[K, E, P]) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	token := s.begin()
	s.mu.Unlock()

	start := time.Now()
	items, err := s.deps.Port.GetAll(ctx)
	s.record("get_all", start, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		if dup, ok := firstDuplicate(items); ok {
			err = fmt.Errorf("%w: %s", ErrDuplicateID, dup)
		}
	}
	var perr error
	if err != nil {
		perr = &PortError{Op: "get_all", Err: err}
	}
	if !s.isCurrent(token) {
		s.logStale("get_all", "")
		return perr
	}
	if perr != nil {
		s.status.SetError(perr.Error())
		s.logger().Warn("entity_event", "event", "load_failed", "store", s.name, "error", perr)
		return perr
	}
	s.items = cloneAll(items)
	s.status.SetFulfilled()
	s.logger().Debug("entity_event", "event", "loaded", "store", s.name, "count", len(s.items))
	return nil
}

// Add validates payload, appends the new entity optimistically and sends it to the port.
// On success the placeholder is replaced with the port's canonical entity.
// POST: a ValidationError leaves the collection unchanged and the port uncalled
func (s *Store[K, E, P]) Add(ctx context.Context, payload P) (E, error) {
	var zero E

	s.mu.Lock()
	token := s.begin()
	if s.opts.RollbackOnAddFailure {
		s.snapshot.Take(s.items)
	}
	entity, err := s.deps.Validator.Create(payload)
	if err == nil && s.indexOf(entity.EntityID()) >= 0 {
		err = fmt.Errorf("%w: %s", ErrDuplicateID, entity.EntityID())
	}
	if err != nil {
		verr := s.reject("add", "", err)
		s.mu.Unlock()
		return zero, verr
	}
	id := entity.EntityID()
	s.items = append(s.items, entity.Clone())
	s.mu.Unlock()

	start := time.Now()
	saved, err := s.deps.Port.Add(ctx, entity.Clone())
	s.record("add", start, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(token) {
		s.logStale("add", id)
		if err != nil {
			if s.opts.RollbackOnAddFailure {
				if j := s.indexOf(id); j >= 0 && sameEntity(s.items[j], entity) {
					s.items = append(s.items[:j:j], s.items[j+1:]...)
					s.logCompensated("add", id)
				}
			}
			return zero, &PortError{Op: "add", Err: err}
		}
		return saved, nil
	}
	if err != nil {
		perr := &PortError{Op: "add", Err: err}
		rolledBack := false
		if s.opts.RollbackOnAddFailure {
			rolledBack = s.restore()
		}
		s.status.SetError(perr.Error())
		s.logger().Warn("entity_event", "event", "add_failed", "store", s.name, "id", id, "rolled_back", rolledBack, "error", perr)
		return zero, perr
	}
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = saved.Clone()
	}
	s.status.SetFulfilled()
	s.logger().Info("entity_event", "event", "added", "store", s.name, "id", saved.EntityID())
	return saved, nil
}

// Update validates payload against the entity with id, replaces it in place
// and sends the new value to the port. A port failure restores the snapshot.
// POST: ErrNotFound and ValidationError leave the collection unchanged and the port uncalled
func (s *Store[K, E, P]) Update(ctx context.Context, id string, payload P) (E, error) {
	var zero E

	s.mu.Lock()
	token := s.begin()
	s.snapshot.Take(s.items)
	i := s.indexOf(id)
	if i < 0 {
		s.status.SetError(ErrNotFound.Error())
		s.mu.Unlock()
		s.logger().Info("entity_event", "event", "update_rejected", "store", s.name, "id", id, "error", ErrNotFound)
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next, err := s.deps.Validator.Update(s.items[i].Clone(), payload)
	if err == nil && next.EntityID() != id {
		err = ErrIDChanged
	}
	if err != nil {
		verr := s.reject("update", id, err)
		s.mu.Unlock()
		return zero, verr
	}
	prev := s.items[i]
	s.items[i] = next.Clone()
	s.mu.Unlock()

	start := time.Now()
	saved, err := s.deps.Port.Update(ctx, next.Clone())
	s.record("update", start, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(token) {
		s.logStale("update", id)
		if err != nil {
			if j := s.indexOf(id); j >= 0 && sameEntity(s.items[j], next) {
				s.items[j] = prev
				s.logCompensated("update", id)
			}
			return zero, &PortError{Op: "update", Err: err}
		}
		return saved, nil
	}
	if err != nil {
		perr := &PortError{Op: "update", Err: err}
		s.restore()
		s.status.SetError(perr.Error())
		s.logger().Warn("entity_event", "event", "update_rolled_back", "store", s.name, "id", id, "error", perr)
		return zero, perr
	}
	if j := s.indexOf(id); j >= 0 {
		s.items[j] = saved.Clone()
	}
	s.status.SetFulfilled()
	s.logger().Info("entity_event", "event", "updated", "store", s.name, "id", id)
	return saved, nil
}

// Delete removes the entity with id optimistically and asks the port to delete it.
// A port failure restores the snapshot.
// POST: ErrNotFound leaves the collection unchanged and the port uncalled
func (s *Store[K, E, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	token := s.begin()
	s.snapshot.Take(s.items)
	i := s.indexOf(id)
	if i < 0 {
		s.status.SetError(ErrNotFound.Error())
		s.mu.Unlock()
		s.logger().Info("entity_event", "event", "delete_rejected", "store", s.name, "id", id, "error", ErrNotFound)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.mu.Unlock()

	start := time.Now()
	err := s.deps.Port.Delete(ctx, id)
	s.record("delete", start, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(token) {
		s.logStale("delete", id)
		if err != nil {
			if s.indexOf(id) < 0 {
				at := min(i, len(s.items))
				s.items = slices.Insert(s.items, at, removed)
				s.logCompensated("delete", id)
			}
			return &PortError{Op: "delete", Err: err}
		}
		return nil
	}
	if err != nil {
		perr := &PortError{Op: "delete", Err: err}
		s.restore()
		s.status.SetError(perr.Error())
		s.logger().Warn("entity_event", "event", "delete_rolled_back", "store", s.name, "id", id, "error", perr)
		return perr
	}
	s.status.SetFulfilled()
	s.logger().Info("entity_event", "event", "deleted", "store", s.name, "id", id)
	return nil
}

// Reject records an intent refused before it reached the store, such as a
// delete blocked by a reference held elsewhere. err is returned unchanged.
// POST: status is Error(err); the collection and the port are untouched
func (s *Store[K, E, P]) Reject(op, id string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begin()
	s.status.SetError(err.Error())
	s.logger().Info("entity_event", "event", op+"_rejected", "store", s.name, "id", id, "error", err)
	return err
}

// SetFilter registers pred under key; a nil pred removes the key.
func (s *Store[K, E, P]) SetFilter(key K, pred Predicate[E]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Set(key, pred)
}

// RemoveFilter removes the predicate under key.
func (s *Store[K, E, P]) RemoveFilter(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Remove(key)
}

// ClearFilters removes every predicate.
func (s *Store[K, E, P]) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Clear()
}

// Entities returns a deep copy of the collection.
func (s *Store[K, E, P]) Entities() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Filtered returns a deep copy of the entities accepted by every filter.
func (s *Store[K, E, P]) Filtered() []E {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.filters.Apply(s.items))
}

// Get returns a copy of the entity with id.
func (s *Store[K, E, P]) Get(id string) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	var zero E
	return zero, false
}

// Status returns the current request status.
func (s *Store[K, E, P]) Status() RequestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Status()
}

// IsPending reports whether an operation is in flight.
func (s *Store[K, E, P]) IsPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.IsPending()
}

// IsFulfilled reports whether the last operation succeeded.
func (s *Store[K, E, P]) IsFulfilled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.IsFulfilled()
}

// Err returns the last error message, or "".
func (s *Store[K, E, P]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Err()
}

// HasActiveFilters reports whether any filter is registered.
func (s *Store[K, E, P]) HasActiveFilters() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Active()
}

// ActiveFiltersCount returns the number of registered filters.
func (s *Store[K, E, P]) ActiveFiltersCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Len()
}

// FilteredCount returns the size of the filtered view.
func (s *Store[K, E, P]) FilteredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters.Apply(s.items))
}

// TotalCount returns the size of the collection.
func (s *Store[K, E, P]) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// HasChange reports whether the collection differs from the last snapshot.
func (s *Store[K, E, P]) HasChange() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.HasChange(s.items)
}

// View returns every derived value from a single consistent read.
func (s *Store[K, E, P]) View() View[E] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := s.filters.Apply(s.items)
	return View[E]{
		Entities:         cloneAll(s.items),
		Filtered:         cloneAll(filtered),
		Status:           s.status.Status(),
		TotalCount:       len(s.items),
		FilteredCount:    len(filtered),
		ActiveFilters:    s.filters.Len(),
		HasActiveFilters: s.filters.Active(),
		HasChange:        s.snapshot.HasChange(s.items),
	}
}

// begin starts a new request cycle. Caller holds s.mu.
func (s *Store[K, E, P]) begin() uint64 {
	s.seq++
	s.status.SetPending()
	return s.seq
}

func (s *Store[K, E, P]) isCurrent(token uint64) bool {
	return token == s.seq
}

// restore assigns the snapshot back onto the collection. Caller holds s.mu.
// Without a snapshot nothing changes.
func (s *Store[K, E, P]) restore() bool {
	items, ok := s.snapshot.Restore()
	if !ok {
		return false
	}
	s.items = items
	return true
}

// reject records a validation failure. Caller holds s.mu.
func (s *Store[K, E, P]) reject(op, id string, err error) *ValidationError {
	verr := &ValidationError{Err: err}
	s.status.SetError(verr.Error())
	s.logger().Info("entity_event", "event", op+"_rejected", "store", s.name, "id", id, "error", verr)
	return verr
}

func (s *Store[K, E, P]) indexOf(id string) int {
	for i, it := range s.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[K, E, P]) record(op string, start time.Time, err error) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordPortCall(s.name, op, time.Since(start), err)
	}
}

func (s *Store[K, E, P]) logStale(op, id string) {
	s.logger().Warn("entity_event", "event", "stale_completion_discarded", "store", s.name, "op", op, "id", id)
}

func (s *Store[K, E, P]) logCompensated(op, id string) {
	s.logger().Warn("entity_event", "event", "stale_failure_reverted", "store", s.name, "op", op, "id", id)
}

func (s *Store[K, E, P]) logger() *slog.Logger {
	if s.deps.Logger != nil {
		return s.deps.Logger
	}
	return slog.Default()
}

func firstDuplicate[E Entity[E]](items []E) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := it.EntityID()
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}
