package projections

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"catalog/internal/application/entitystate"
	"catalog/internal/application/listutil"
	"catalog/internal/application/workspace"
	"catalog/internal/domain/artwork"
)

// ArtworkSortColumns are the columns an artwork list can be sorted by.
var ArtworkSortColumns = []string{"title", "year", "price", "status", "updated"}

var artworkComparators = listutil.Comparators[artwork.Artwork]{
	"title":   listutil.By(func(a artwork.Artwork) string { return strings.ToLower(a.Title) }),
	"year":    listutil.By(func(a artwork.Artwork) int { return a.Year }),
	"price":   listutil.By(func(a artwork.Artwork) int64 { return a.PriceCents }),
	"status":  listutil.By(func(a artwork.Artwork) string { return string(a.Status) }),
	"updated": listutil.By(func(a artwork.Artwork) int64 { return a.UpdatedAt.UnixNano() }),
}

// ArtworkListQuery carries query parameters.
type ArtworkListQuery struct {
	List listutil.Params
}

// ArtworkRow is one artwork joined with its type and material names.
type ArtworkRow struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	TypeID          string         `json:"type_id"`
	TypeName        string         `json:"type_name"`
	Year            int            `json:"year,omitempty"`
	Status          artwork.Status `json:"status"`
	PriceCents      int64          `json:"price_cents"`
	Price           string         `json:"price"`
	Size            string         `json:"size,omitempty"`
	Materials       []string       `json:"materials"`
	Tags            []string       `json:"tags"`
	DescriptionHTML template.HTML  `json:"description_html,omitempty"`
}

// ArtworkListResult carries the query result.
type ArtworkListResult struct {
	Rows             []ArtworkRow              `json:"rows"`
	Page             listutil.PageInfo         `json:"page"`
	Sort             string                    `json:"sort,omitempty"`
	Dir              string                    `json:"dir"`
	Status           entitystate.RequestStatus `json:"status"`
	TotalCount       int                       `json:"total_count"`
	FilteredCount    int                       `json:"filtered_count"`
	ActiveFilters    int                       `json:"active_filters"`
	HasActiveFilters bool                      `json:"has_active_filters"`
	HasChange        bool                      `json:"has_change"`
	FilterValues     map[string]string         `json:"filter_values"`
}

// ArtworkListDeps holds dependencies for QueryArtworkList.
type ArtworkListDeps struct {
	Artworks  ArtworkViewer
	Types     TypeLister
	Materials MaterialLister
	Filters   FilterValueReader
}

// QueryArtworkList builds one page of the filtered artwork list.
// PRE: deps are backed by a loaded workspace
// POST: rows follow the filtered view, sorted when requested; counts come from one store read
func QueryArtworkList(_ context.Context, query ArtworkListQuery, deps ArtworkListDeps) (ArtworkListResult, error) {
	view := deps.Artworks.View()

	typeNames := make(map[string]string)
	for _, t := range deps.Types.Entities() {
		typeNames[t.ID] = t.Name
	}
	materialNames := make(map[string]string)
	for _, m := range deps.Materials.Entities() {
		materialNames[m.ID] = m.Name
	}

	sorted := listutil.Sort(view.Filtered, query.List, artworkComparators)
	page, info := listutil.Paginate(sorted, query.List)

	rows := make([]ArtworkRow, 0, len(page))
	for _, a := range page {
		row := ArtworkRow{
			ID:              a.ID,
			Title:           a.Title,
			TypeID:          a.TypeID,
			TypeName:        typeNames[a.TypeID],
			Year:            a.Year,
			Status:          a.Status,
			PriceCents:      a.PriceCents,
			Price:           FormatPrice(a.PriceCents),
			Size:            formatSize(a.Dimensions),
			Tags:            a.Tags,
			DescriptionHTML: RenderMarkdown(a.Description),
		}
		if row.TypeName == "" {
			row.TypeName = "(unknown type)"
		}
		for _, u := range a.Materials {
			name, ok := materialNames[u.MaterialID]
			if !ok {
				name = u.MaterialID
			}
			row.Materials = append(row.Materials, name)
		}
		rows = append(rows, row)
	}

	return ArtworkListResult{
		Rows:             rows,
		Page:             info,
		Sort:             query.List.Sort,
		Dir:              query.List.Dir(),
		Status:           view.Status,
		TotalCount:       view.TotalCount,
		FilteredCount:    view.FilteredCount,
		ActiveFilters:    view.ActiveFilters,
		HasActiveFilters: view.HasActiveFilters,
		HasChange:        view.HasChange,
		FilterValues:     deps.Filters.FilterValues(workspace.CollectionArtworks),
	}, nil
}

// FormatPrice renders cents as dollars with thousands separators, e.g. "$3,600.00".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

func formatSize(d artwork.Dimensions) string {
	if d.WidthCM == 0 && d.HeightCM == 0 {
		return ""
	}
	s := fmt.Sprintf("%g × %g cm", d.WidthCM, d.HeightCM)
	if d.DepthCM > 0 {
		s = fmt.Sprintf("%g × %g × %g cm", d.WidthCM, d.HeightCM, d.DepthCM)
	}
	return s
}
