package projections

import (
	"catalog/internal/application/entitystate"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// ArtworkViewer reads a consistent view of the artwork store.
type ArtworkViewer interface {
	View() entitystate.View[artwork.Artwork]
}

// MaterialLister lists the materials of a workspace.
type MaterialLister interface {
	Entities() []material.Material
}

// TypeLister lists the artwork types of a workspace.
type TypeLister interface {
	Entities() []artworktype.ArtworkType
}

// FilterValueReader returns the raw filter values recorded for a collection.
type FilterValueReader interface {
	FilterValues(collection string) map[string]string
}

// CollectionViewer is the status surface shared by every entity store.
type CollectionViewer interface {
	Name() string
	Status() entitystate.RequestStatus
	TotalCount() int
	FilteredCount() int
	ActiveFiltersCount() int
	HasChange() bool
}
