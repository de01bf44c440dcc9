package artwork

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
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrTitleTooShort     = errors.New("title must be at least 3 characters")
	ErrEmptyTypeID       = errors.New("artwork type is required")
	ErrInvalidYear       = errors.New("year must be between 1000 and 9999")
	ErrInvalidStatus     = errors.New("status must be one of: draft, available, reserved, sold, archived")
	ErrNegativeDimension = errors.New("dimensions cannot be negative")
	ErrEmptyMaterialID   = errors.New("material usage requires a material")
	ErrInvalidQuantity   = errors.New("material quantity must be greater than zero")
	ErrDuplicateMaterial = errors.New("a material can only be listed once")
	ErrNegativeHours     = errors.New("hours cannot be negative")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrTooManyTags       = errors.New("an artwork can have at most 20 tags")
	ErrSoldPriceLocked   = errors.New("price of a sold artwork cannot change")
)

// Length and count constants.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxTags              = 20
	MaxTagLength         = 40
	MinYear              = 1000
	MaxYear              = 9999
)

// Status is the sales lifecycle state of an artwork.
type Status string

// Status constants
const (
	StatusDraft     Status = "draft"
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
	StatusArchived  Status = "archived"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []Status{StatusDraft, StatusAvailable, StatusReserved, StatusSold, StatusArchived}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Dimensions are the physical size in centimetres. Zero means not recorded.
type Dimensions struct {
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
	DepthCM  float64 `json:"depth_cm"`
}

// MaterialUsage is the quantity of one material used in an artwork, in the material's unit.
type MaterialUsage struct {
	MaterialID string  `json:"material_id"`
	Quantity   float64 `json:"quantity"`
}

// Artwork is a catalogued piece of work.
type Artwork struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	TypeID      string          `json:"type_id"`
	Year        int             `json:"year,omitempty"`
	Status      Status          `json:"status"`
	Dimensions  Dimensions      `json:"dimensions"`
	Materials   []MaterialUsage `json:"materials"`
	Hours       float64         `json:"hours"`
	PriceCents  int64           `json:"price_cents"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Input is the editable subset of an Artwork.
type Input struct {
	Title       string          `json:"title"`
	TypeID      string          `json:"type_id"`
	Year        int             `json:"year"`
	Status      Status          `json:"status"`
	Dimensions  Dimensions      `json:"dimensions"`
	Materials   []MaterialUsage `json:"materials"`
	Hours       float64         `json:"hours"`
	PriceCents  int64           `json:"price_cents"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags"`
}

// InputFrom returns the Input that reproduces a's editable fields.
func InputFrom(a Artwork) Input {
	c := a.Clone()
	return Input{
		Title:       c.Title,
		TypeID:      c.TypeID,
		Year:        c.Year,
		Status:      c.Status,
		Dimensions:  c.Dimensions,
		Materials:   c.Materials,
		Hours:       c.Hours,
		PriceCents:  c.PriceCents,
		Description: c.Description,
		Tags:        c.Tags,
	}
}

// New builds a validated Artwork. An empty status defaults to draft.
// PRE: id is non-empty
// POST: Returns a valid Artwork or a validation error
func New(id string, in Input, now time.Time) (Artwork, error) {
	a := Artwork{ID: id, CreatedAt: now, UpdatedAt: now}
	a.apply(in)
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if err := a.Validate(); err != nil {
		return Artwork{}, err
	}
	return a, nil
}

// Update returns a copy of a with in applied. An empty status keeps the current one.
// INVARIANT: a is not mutated; ID and CreatedAt are preserved
func (a Artwork) Update(in Input, now time.Time) (Artwork, error) {
	if a.Status == StatusSold && in.PriceCents != a.PriceCents {
		return Artwork{}, ErrSoldPriceLocked
	}
	next := a.Clone()
	next.apply(in)
	if next.Status == "" {
		next.Status = a.Status
	}
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return Artwork{}, err
	}
	return next, nil
}

// Validate checks if the Artwork has valid data.
// PRE: Artwork struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Artwork) Validate() error {
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(a.Title) < MinTitleLength {
		return ErrTitleTooShort
	}
	if utf8.RuneCountInString(a.Title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}
	if a.TypeID == "" {
		return ErrEmptyTypeID
	}
	if a.Year != 0 && (a.Year < MinYear || a.Year > MaxYear) {
		return ErrInvalidYear
	}
	if !a.Status.IsValid() {
		return ErrInvalidStatus
	}
	d := a.Dimensions
	if d.WidthCM < 0 || d.HeightCM < 0 || d.DepthCM < 0 {
		return ErrNegativeDimension
	}
	seen := make(map[string]bool, len(a.Materials))
	for _, u := range a.Materials {
		if u.MaterialID == "" {
			return ErrEmptyMaterialID
		}
		if u.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if seen[u.MaterialID] {
			return ErrDuplicateMaterial
		}
		seen[u.MaterialID] = true
	}
	if a.Hours < 0 {
		return ErrNegativeHours
	}
	if a.PriceCents < 0 {
		return ErrNegativePrice
	}
	if utf8.RuneCountInString(a.Description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	if len(a.Tags) > MaxTags {
		return ErrTooManyTags
	}
	for _, t := range a.Tags {
		if utf8.RuneCountInString(t) > MaxTagLength {
			return fmt.Errorf("tag %q exceeds %d characters", t, MaxTagLength)
		}
	}
	return nil
}

// EntityID returns the identity of the artwork.
func (a Artwork) EntityID() string { return a.ID }

// Clone returns a deep copy of a.
func (a Artwork) Clone() Artwork {
	c := a
	if a.Materials != nil {
		c.Materials = make([]MaterialUsage, len(a.Materials))
		copy(c.Materials, a.Materials)
	}
	if a.Tags != nil {
		c.Tags = make([]string, len(a.Tags))
		copy(c.Tags, a.Tags)
	}
	return c
}

// MaterialIDs returns the ids of every material used by a, in order.
func (a Artwork) MaterialIDs() []string {
	ids := make([]string, 0, len(a.Materials))
	for _, u := range a.Materials {
		ids = append(ids, u.MaterialID)
	}
	return ids
}

// HasTag reports whether a carries tag (case-insensitive).
func (a Artwork) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// WithPrice returns a copy of a with PriceCents set.
func (a Artwork) WithPrice(cents int64, now time.Time) (Artwork, error) {
	in := InputFrom(a)
	in.PriceCents = cents
	return a.Update(in, now)
}

func (a *Artwork) apply(in Input) {
	a.Title = strings.TrimSpace(in.Title)
	a.TypeID = strings.TrimSpace(in.TypeID)
	a.Year = in.Year
	a.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))
	a.Dimensions = in.Dimensions
	a.Materials = nil
	for _, u := range in.Materials {
		a.Materials = append(a.Materials, MaterialUsage{
			MaterialID: strings.TrimSpace(u.MaterialID),
			Quantity:   u.Quantity,
		})
	}
	a.Hours = in.Hours
	a.PriceCents = in.PriceCents
	a.Description = strings.TrimSpace(in.Description)
	a.Tags = normalizeTags(in.Tags)
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Validator creates and updates Artworks with generated ids and timestamps.
type Validator struct {
	NewID func() string
	Now   func() time.Time
}

// Create builds a new Artwork from in.
func (v Validator) Create(in Input) (Artwork, error) {
	id := uuid.NewString()
	if v.NewID != nil {
		id = v.NewID()
	}
	return New(id, in, v.now())
}

// Update applies in to current.
func (v Validator) Update(current Artwork, in Input) (Artwork, error) {
	return current.Update(in, v.now())
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}
