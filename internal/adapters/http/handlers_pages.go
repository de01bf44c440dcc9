package web

import (
	"net/http"

	"catalog/internal/application/listutil"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/projections"
	"catalog/internal/application/workspace"
	domain "catalog/internal/domain/artwork"
)

// artworkPageFilters are the form fields the artworks page submits, in display order.
var artworkPageFilters = []string{"search", "status", "type", "material", "tag"}

// handleArtworksPage handles GET /artworks
func (a *app) handleArtworksPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w, "GET")
		return
	}
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	params := listutil.Parse(r.URL.Query(), projections.ArtworkSortColumns)
	result, err := projections.QueryArtworkList(r.Context(), projections.ArtworkListQuery{List: params}, artworkListDeps(ws))
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "artworks.html", map[string]any{
		"Result":    result,
		"Params":    params,
		"Statuses":  domain.ValidStatuses,
		"Types":     ws.ArtworkTypes.Entities(),
		"Materials": ws.Materials.Entities(),
		"Columns":   projections.ArtworkSortColumns,
		"PerPage":   listutil.PerPageOptions,
	})
}

// handleArtworksPageFilters handles POST /artworks/filters from the page's filter form.
// action=clear drops every filter; otherwise each field is set or removed.
func (a *app) handleArtworksPageFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		methodNotAllowed(w, "POST")
		return
	}
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if r.FormValue("action") == "clear" {
		orchestrators.ExecuteClearFilters(workspace.CollectionArtworks, ws.Artworks, ws)
		http.Redirect(w, r, "/artworks", http.StatusSeeOther)
		return
	}

	deps := orchestrators.ArtworkFilterDeps{Store: ws.Artworks, Values: ws}
	for _, key := range artworkPageFilters {
		err := orchestrators.ExecuteSetArtworkFilter(orchestrators.SetFilterInput{
			Collection: workspace.CollectionArtworks,
			Key:        key,
			Value:      r.PostForm.Get(key),
		}, deps)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/artworks", http.StatusSeeOther)
}
