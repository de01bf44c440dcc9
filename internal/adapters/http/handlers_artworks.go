package web

import (
	"net/http"

	"catalog/internal/application/listutil"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/projections"
	"catalog/internal/application/workspace"
	domain "catalog/internal/domain/artwork"
)

func artworkListDeps(ws *workspace.Workspace) projections.ArtworkListDeps {
	return projections.ArtworkListDeps{
		Artworks:  ws.Artworks,
		Types:     ws.ArtworkTypes,
		Materials: ws.Materials,
		Filters:   ws,
	}
}

func saveArtworkDeps(ws *workspace.Workspace) orchestrators.SaveArtworkDeps {
	return orchestrators.SaveArtworkDeps{
		Artworks:  ws.Artworks,
		Types:     ws.ArtworkTypes,
		Materials: ws.Materials,
	}
}

// handleArtworks handles GET (filtered, paged list) and POST (create) for /api/artworks
func (a *app) handleArtworks(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}

	switch r.Method {
	case "GET":
		query := projections.ArtworkListQuery{
			List: listutil.Parse(r.URL.Query(), projections.ArtworkSortColumns),
		}
		result, err := projections.QueryArtworkList(r.Context(), query, artworkListDeps(ws))
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "POST":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input domain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		created, err := orchestrators.ExecuteCreateArtwork(r.Context(), input, saveArtworkDeps(ws))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

// handleArtwork handles GET, PUT and DELETE for /api/artworks/{id}
func (a *app) handleArtwork(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	id := r.PathValue("id")

	switch r.Method {
	case "GET":
		art, ok := ws.Artworks.Get(id)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, art)

	case "PUT":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input domain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		updated, err := orchestrators.ExecuteUpdateArtwork(r.Context(), orchestrators.UpdateArtworkInput{
			ID:      id,
			Artwork: input,
		}, saveArtworkDeps(ws))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case "DELETE":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if err := ws.Artworks.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET", "PUT", "DELETE")
	}
}

// handleArtworkQuote handles GET /api/artworks/{id}/quote
func (a *app) handleArtworkQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w, "GET")
		return
	}
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	quote, err := orchestrators.ExecuteQuoteArtworkPrice(r.Context(), r.PathValue("id"), orchestrators.QuoteArtworkPriceDeps{
		Artworks:  ws.Artworks,
		Types:     ws.ArtworkTypes,
		Materials: ws.Materials,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleArtworkPrice handles POST /api/artworks/{id}/price, applying the suggested price.
func (a *app) handleArtworkPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		methodNotAllowed(w, "POST")
		return
	}
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if !sess.CanEdit() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	result, err := orchestrators.ExecuteApplySuggestedPrice(r.Context(), r.PathValue("id"), orchestrators.ApplySuggestedPriceDeps{
		Artworks:  ws.Artworks,
		Types:     ws.ArtworkTypes,
		Materials: ws.Materials,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// filterRequest is the JSON body of PUT /api/{collection}/filters.
type filterRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handleArtworkFilters handles GET (recorded values), PUT (set one) and DELETE (clear all).
func (a *app) handleArtworkFilters(w http.ResponseWriter, r *http.Request) {
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	a.serveFilters(w, r, ws, workspace.CollectionArtworks, ws.Artworks, func(in orchestrators.SetFilterInput) error {
		return orchestrators.ExecuteSetArtworkFilter(in, orchestrators.ArtworkFilterDeps{Store: ws.Artworks, Values: ws})
	})
}

// serveFilters is shared by the three filter endpoints.
func (a *app) serveFilters(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, collection string,
	store orchestrators.FilterClearer, set func(orchestrators.SetFilterInput) error) {
	switch r.Method {
	case "GET":
		writeJSON(w, http.StatusOK, ws.FilterValues(collection))
	case "PUT":
		var req filterRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if err := set(orchestrators.SetFilterInput{Collection: collection, Key: req.Key, Value: req.Value}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws.FilterValues(collection))
	case "DELETE":
		orchestrators.ExecuteClearFilters(collection, store, ws)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET", "PUT", "DELETE")
	}
}
