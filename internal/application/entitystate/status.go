// Package entitystate holds the state container shared by every editable
// collection: request status, a single rollback snapshot, keyed filter
// predicates and the optimistic CRUD store that composes them.
package entitystate

// Phase is the lifecycle position of the most recent request.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseError
)

// String returns the lowercase phase name used in logs and JSON.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText renders the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// RequestStatus is the tagged status value. Message is set only for PhaseError.
type RequestStatus struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// StatusTracker records the status of the last request.
// It is not safe for concurrent use; Store serializes access.
type StatusTracker struct {
	current RequestStatus
}

// SetPending marks a request as in flight, clearing any previous error.
// POST: Status() == {PhasePending, ""}
func (t *StatusTracker) SetPending() {
	t.current = RequestStatus{Phase: PhasePending}
}

// SetFulfilled marks the request as completed successfully.
// POST: Status() == {PhaseFulfilled, ""}
func (t *StatusTracker) SetFulfilled() {
	t.current = RequestStatus{Phase: PhaseFulfilled}
}

// SetError marks the request as failed with msg.
// POST: Status() == {PhaseError, msg}
func (t *StatusTracker) SetError(msg string) {
	t.current = RequestStatus{Phase: PhaseError, Message: msg}
}

// Status returns the current status value.
func (t *StatusTracker) Status() RequestStatus {
	return t.current
}

// IsPending reports whether a request is in flight.
func (t *StatusTracker) IsPending() bool {
	return t.current.Phase == PhasePending
}

// IsFulfilled reports whether the last request succeeded.
func (t *StatusTracker) IsFulfilled() bool {
	return t.current.Phase == PhaseFulfilled
}

// Err returns the error message of the last request, or "" when it did not fail.
func (t *StatusTracker) Err() string {
	if t.current.Phase != PhaseError {
		return ""
	}
	return t.current.Message
}
