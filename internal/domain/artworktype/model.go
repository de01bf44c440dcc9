package artworktype

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("artwork type name cannot be empty")
	ErrNameTooShort     = errors.New("artwork type name must be at least 2 characters")
	ErrNegativeRate     = errors.New("hourly rate cannot be negative")
	ErrMarkupOutOfRange = errors.New("markup must be between 0 and 500 percent")
)

// Length and range constants.
const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
	MaxMarkupPercent     = 500
)

// ArtworkType groups artworks that share a labour rate and markup (e.g. Oil Painting, Print).
type ArtworkType struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	MarkupPercent   int       `json:"markup_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input is the editable subset of an ArtworkType.
type Input struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	MarkupPercent   int    `json:"markup_percent"`
}

// New builds a validated ArtworkType.
// PRE: id is non-empty
// POST: Returns a valid ArtworkType or a validation error
func New(id string, in Input, now time.Time) (ArtworkType, error) {
	t := ArtworkType{ID: id, CreatedAt: now, UpdatedAt: now}
	t.apply(in)
	if err := t.Validate(); err != nil {
		return ArtworkType{}, err
	}
	return t, nil
}

// Update returns a copy of t with in applied.
// INVARIANT: t is not mutated; ID and CreatedAt are preserved
func (t ArtworkType) Update(in Input, now time.Time) (ArtworkType, error) {
	next := t
	next.apply(in)
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return ArtworkType{}, err
	}
	return next, nil
}

// Validate checks if the ArtworkType has valid data.
// PRE: ArtworkType struct is populated
// POST: Returns nil if valid, error otherwise
func (t *ArtworkType) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) < MinNameLength {
		return ErrNameTooShort
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("artwork type name cannot exceed %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("artwork type description cannot exceed %d characters", MaxDescriptionLength)
	}
	if t.HourlyRateCents < 0 {
		return ErrNegativeRate
	}
	if t.MarkupPercent < 0 || t.MarkupPercent > MaxMarkupPercent {
		return ErrMarkupOutOfRange
	}
	return nil
}

// EntityID returns the identity of the type.
func (t ArtworkType) EntityID() string { return t.ID }

// Clone returns a copy of t. ArtworkType holds no reference fields.
func (t ArtworkType) Clone() ArtworkType { return t }

func (t *ArtworkType) apply(in Input) {
	t.Name = strings.TrimSpace(in.Name)
	t.Description = strings.TrimSpace(in.Description)
	t.HourlyRateCents = in.HourlyRateCents
	t.MarkupPercent = in.MarkupPercent
}

// Validator creates and updates ArtworkTypes with generated ids and timestamps.
type Validator struct {
	NewID func() string    // optional, uuid when nil
	Now   func() time.Time // optional, time.Now when nil
}

// Create builds a new ArtworkType from in.
func (v Validator) Create(in Input) (ArtworkType, error) {
	return New(v.id(), in, v.now())
}

// Update applies in to current.
func (v Validator) Update(current ArtworkType, in Input) (ArtworkType, error) {
	return current.Update(in, v.now())
}

func (v Validator) id() string {
	if v.NewID != nil {
		return v.NewID()
	}
	return uuid.NewString()
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// FilterKey names a filter dimension over artwork types.
type FilterKey int

const (
	FilterSearch FilterKey = iota
)

// String returns the query-string name of the filter.
func (k FilterKey) String() string {
	switch k {
	case FilterSearch:
		return "search"
	}
	return fmt.Sprintf("FilterKey(%d)", int(k))
}

// ParseFilterKey maps a query-string name to a FilterKey.
func ParseFilterKey(s string) (FilterKey, bool) {
	switch s {
	case "search":
		return FilterSearch, true
	}
	return 0, false
}

// MatchSearch matches types whose name or description contains q, case-insensitively.
func MatchSearch(q string) func(ArtworkType) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(t ArtworkType) bool {
		return strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}
}
