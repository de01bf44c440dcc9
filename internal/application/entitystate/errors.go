package entitystate

import "errors"

var (
	// ErrNotFound is reported when an operation names an id that is not in the collection.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is reported when an entity would share its id with another.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrIDChanged is reported when a validator returns an entity with a different id.
	ErrIDChanged = errors.New("update cannot change the entity id")
)

// ValidationError wraps a validator failure. The data port is never called
// for a payload that produced a ValidationError.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// PortError wraps a failure returned by the data port.
type PortError struct {
	Op  string
	Err error
}

func (e *PortError) Error() string { return e.Err.Error() }

func (e *PortError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPort reports whether err is (or wraps) a PortError.
func IsPort(err error) bool {
	var p *PortError
	return errors.As(err, &p)
}
