package artwork

import (
	"fmt"
	"strings"
)

// FilterKey names a filter dimension over artworks. Each dimension holds at most one predicate.
type FilterKey int

const (
	FilterSearch FilterKey = iota
	FilterStatus
	FilterType
	FilterMaterial
	FilterTag
)

var filterNames = map[FilterKey]string{
	FilterSearch:   "search",
	FilterStatus:   "status",
	FilterType:     "type",
	FilterMaterial: "material",
	FilterTag:      "tag",
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

// MatchSearch matches artworks whose title, description or tags contain q, case-insensitively.
func MatchSearch(q string) func(Artwork) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(a Artwork) bool {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Description), q) {
			return true
		}
		for _, t := range a.Tags {
			if strings.Contains(t, q) {
				return true
			}
		}
		return false
	}
}

// HasStatus matches artworks in any of the given statuses.
func HasStatus(statuses ...Status) func(Artwork) bool {
	set := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return func(a Artwork) bool {
		return set[a.Status]
	}
}

// OfType matches artworks of the given type.
func OfType(typeID string) func(Artwork) bool {
	return func(a Artwork) bool {
		return a.TypeID == typeID
	}
}

// UsesMaterial matches artworks that list the given material.
func UsesMaterial(materialID string) func(Artwork) bool {
	return func(a Artwork) bool {
		for _, u := range a.Materials {
			if u.MaterialID == materialID {
				return true
			}
		}
		return false
	}
}

// Tagged matches artworks carrying tag.
func Tagged(tag string) func(Artwork) bool {
	tag = strings.TrimSpace(tag)
	return func(a Artwork) bool {
		return a.HasTag(tag)
	}
}
