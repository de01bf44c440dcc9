package entitystate

// Predicate decides whether an entity belongs in a filtered view.
type Predicate[E any] func(E) bool

// Registry maps filter dimensions to predicates. Each UI concern owns one
// key; the derived view is the AND of every registered predicate, so a new
// filter can only narrow the result.
// Registry is not safe for concurrent use; Store serializes access.
type Registry[K comparable, E any] struct {
	preds map[K]Predicate[E]
}

// NewRegistry returns an empty registry.
func NewRegistry[K comparable, E any]() *Registry[K, E] {
	return &Registry[K, E]{preds: make(map[K]Predicate[E])}
}

// Set registers or replaces the predicate under key. A nil predicate removes the key.
// POST: at most one predicate is registered for key
func (r *Registry[K, E]) Set(key K, pred Predicate[E]) {
	if pred == nil {
		r.Remove(key)
		return
	}
	r.preds[key] = pred
}

// Remove deletes the predicate under key. Absent keys are ignored.
func (r *Registry[K, E]) Remove(key K) {
	delete(r.preds, key)
}

// Clear removes every predicate.
func (r *Registry[K, E]) Clear() {
	clear(r.preds)
}

// Active reports whether any predicate is registered.
func (r *Registry[K, E]) Active() bool {
	return len(r.preds) > 0
}

// Len returns the number of registered predicates.
func (r *Registry[K, E]) Len() int {
	return len(r.preds)
}

// Has reports whether key has a predicate.
func (r *Registry[K, E]) Has(key K) bool {
	_, ok := r.preds[key]
	return ok
}

// Keys returns the registered keys in no particular order.
func (r *Registry[K, E]) Keys() []K {
	keys := make([]K, 0, len(r.preds))
	for k := range r.preds {
		keys = append(keys, k)
	}
	return keys
}

// Apply returns the entries of items accepted by every predicate, in their original order.
// With no predicates the whole collection is returned.
// INVARIANT: the result depends only on items and the registered predicates
func (r *Registry[K, E]) Apply(items []E) []E {
	out := make([]E, 0, len(items))
	for _, it := range items {
		if r.match(it) {
			out = append(out, it)
		}
	}
	return out
}

func (r *Registry[K, E]) match(it E) bool {
	for _, p := range r.preds {
		if !p(it) {
			return false
		}
	}
	return true
}
