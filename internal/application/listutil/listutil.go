// Package listutil parses list-view query strings and pages in-memory collections.
package listutil

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
)

// DefaultPerPage is the page size used when per_page is absent or not allowed.
const DefaultPerPage = 20

// PerPageOptions are the page sizes a client may ask for.
var PerPageOptions = []int{10, 20, 50, 100}

// Params are the list parameters of one request.
type Params struct {
	Page    int    // 1-indexed
	PerPage int    // one of PerPageOptions
	Sort    string // "" keeps collection order
	Desc    bool
}

// Parse reads page, per_page, sort and dir from q.
// PRE: sortable lists the column names a client may sort by
// POST: Page >= 1, PerPage is allowed, Sort is "" or in sortable
func Parse(q url.Values, sortable []string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}
	if s := q.Get("sort"); slices.Contains(sortable, s) {
		p.Sort = s
		p.Desc = q.Get("dir") == "desc"
	}
	return p
}

// Dir returns "asc" or "desc" for templates and JSON.
func (p Params) Dir() string {
	if p.Desc {
		return "desc"
	}
	return "asc"
}

// Comparators maps a sort column to a three-way comparison.
type Comparators[T any] map[string]func(a, b T) int

// Sort returns a sorted copy of items by p.Sort. Ties keep their collection order.
// An unknown or empty column returns the items unchanged.
func Sort[T any](items []T, p Params, by Comparators[T]) []T {
	out := slices.Clone(items)
	compare, ok := by[p.Sort]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if p.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

// By builds a comparator from a key extractor.
func By[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

// PageInfo describes the page being shown.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo computes page metadata, clamping page into range.
// POST: 1 <= Page <= TotalPages; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), pages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Offset is the index of the first item on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow is the 1-indexed first row shown, or 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow is the 1-indexed last row shown.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers returns up to five page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const window = 5
	start := max(p.Page-window/2, 1)
	end := start + window - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-window+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}

// Paginate returns the slice of items on the page described by p and its metadata.
// POST: the returned slice shares no backing array with items
func Paginate[T any](items []T, p Params) ([]T, PageInfo) {
	info := NewPageInfo(p.Page, p.PerPage, len(items))
	start := min(info.Offset(), len(items))
	end := min(start+info.PerPage, len(items))
	return slices.Clone(items[start:end]), info
}
