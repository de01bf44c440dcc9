package material

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
	ErrEmptyName    = errors.New("material name cannot be empty")
	ErrNameTooShort = errors.New("material name must be at least 2 characters")
	ErrInvalidUnit  = errors.New("unit must be one of: ml, g, kg, m, cm, sheet, piece, tube")
	ErrNegativeCost = errors.New("unit cost cannot be negative")
)

// Unit constants.
const (
	UnitMillilitre = "ml"
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMetre      = "m"
	UnitCentimetre = "cm"
	UnitSheet      = "sheet"
	UnitPiece      = "piece"
	UnitTube       = "tube"
)

// ValidUnits contains all valid unit values.
var ValidUnits = []string{
	UnitMillilitre, UnitGram, UnitKilogram, UnitMetre,
	UnitCentimetre, UnitSheet, UnitPiece, UnitTube,
}

// Max length constants.
const (
	MinNameLength     = 2
	MaxNameLength     = 120
	MaxSupplierLength = 120
	MaxNotesLength    = 2000
)

// Material is a consumable used to make artworks, priced per unit.
type Material struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	UnitCostCents int64     `json:"unit_cost_cents"`
	Supplier      string    `json:"supplier,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Input is the editable subset of a Material.
type Input struct {
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	UnitCostCents int64  `json:"unit_cost_cents"`
	Supplier      string `json:"supplier"`
	Notes         string `json:"notes"`
}

// New builds a validated Material.
// PRE: id is non-empty
// POST: Returns a valid Material or a validation error
func New(id string, in Input, now time.Time) (Material, error) {
	m := Material{ID: id, CreatedAt: now, UpdatedAt: now}
	m.apply(in)
	if err := m.Validate(); err != nil {
		return Material{}, err
	}
	return m, nil
}

// Update returns a copy of m with in applied.
// INVARIANT: m is not mutated; ID and CreatedAt are preserved
func (m Material) Update(in Input, now time.Time) (Material, error) {
	next := m
	next.apply(in)
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return Material{}, err
	}
	return next, nil
}

// Validate checks if the Material has valid data.
// PRE: Material struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Material) Validate() error {
	if m.Name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(m.Name) < MinNameLength {
		return ErrNameTooShort
	}
	if utf8.RuneCountInString(m.Name) > MaxNameLength {
		return fmt.Errorf("material name cannot exceed %d characters", MaxNameLength)
	}
	if !IsValidUnit(m.Unit) {
		return ErrInvalidUnit
	}
	if m.UnitCostCents < 0 {
		return ErrNegativeCost
	}
	if utf8.RuneCountInString(m.Supplier) > MaxSupplierLength {
		return fmt.Errorf("supplier cannot exceed %d characters", MaxSupplierLength)
	}
	if utf8.RuneCountInString(m.Notes) > MaxNotesLength {
		return fmt.Errorf("material notes cannot exceed %d characters", MaxNotesLength)
	}
	return nil
}

// EntityID returns the identity of the material.
func (m Material) EntityID() string { return m.ID }

// Clone returns a copy of m. Material holds no reference fields.
func (m Material) Clone() Material { return m }

func (m *Material) apply(in Input) {
	m.Name = strings.TrimSpace(in.Name)
	m.Unit = strings.ToLower(strings.TrimSpace(in.Unit))
	m.UnitCostCents = in.UnitCostCents
	m.Supplier = strings.TrimSpace(in.Supplier)
	m.Notes = strings.TrimSpace(in.Notes)
}

// IsValidUnit reports whether unit is one of ValidUnits.
func IsValidUnit(unit string) bool {
	for _, u := range ValidUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// Validator creates and updates Materials with generated ids and timestamps.
type Validator struct {
	NewID func() string
	Now   func() time.Time
}

// Create builds a new Material from in.
func (v Validator) Create(in Input) (Material, error) {
	id := uuid.NewString()
	if v.NewID != nil {
		id = v.NewID()
	}
	return New(id, in, v.now())
}

// Update applies in to current.
func (v Validator) Update(current Material, in Input) (Material, error) {
	return current.Update(in, v.now())
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// FilterKey names a filter dimension over materials.
type FilterKey int

const (
	FilterSearch FilterKey = iota
	FilterSupplier
	FilterUnit
)

var filterNames = map[FilterKey]string{
	FilterSearch:   "search",
	FilterSupplier: "supplier",
	FilterUnit:     "unit",
}

func (k FilterKey) String() string {
	if s, ok := filterNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FilterKey(%d)", int(k))
}

// ParseFilterKey maps a query-string name to a FilterKey.
func ParseFilterKey(s string) (FilterKey, bool) {
	for k, name := range filterNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// MatchSearch matches materials whose name or notes contain q, case-insensitively.
func MatchSearch(q string) func(Material) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(m Material) bool {
		return strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Notes), q)
	}
}

// FromSupplier matches materials bought from supplier (case-insensitive).
func FromSupplier(supplier string) func(Material) bool {
	supplier = strings.TrimSpace(supplier)
	return func(m Material) bool {
		return strings.EqualFold(m.Supplier, supplier)
	}
}

// MeasuredIn matches materials with the given unit.
func MeasuredIn(unit string) func(Material) bool {
	unit = strings.ToLower(strings.TrimSpace(unit))
	return func(m Material) bool {
		return m.Unit == unit
	}
}
