package web

import (
	"net/http"

	"catalog/internal/application/entitystate"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/workspace"
	artworkTypeDomain "catalog/internal/domain/artworktype"
	materialDomain "catalog/internal/domain/material"
)

// collectionResponse is the JSON shape of a material or artwork type list.
type collectionResponse[E any] struct {
	Items []E `json:"items"`
	entitystate.View[E]
	FilterValues map[string]string `json:"filter_values"`
}

func newCollectionResponse[E any](view entitystate.View[E], values map[string]string) collectionResponse[E] {
	items := view.Filtered
	if items == nil {
		items = []E{}
	}
	return collectionResponse[E]{Items: items, View: view, FilterValues: values}
}

// handleMaterials handles GET (filtered list) and POST (create) for /api/materials
func (a *app) handleMaterials(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	switch r.Method {
	case "GET":
		writeJSON(w, http.StatusOK, newCollectionResponse(ws.Materials.View(), ws.FilterValues(workspace.CollectionMaterials)))
	case "POST":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input materialDomain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		created, err := ws.Materials.Add(r.Context(), input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

// handleMaterial handles GET, PUT and DELETE for /api/materials/{id}
func (a *app) handleMaterial(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	id := r.PathValue("id")

	switch r.Method {
	case "GET":
		m, ok := ws.Materials.Get(id)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case "PUT":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input materialDomain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		updated, err := ws.Materials.Update(r.Context(), id, input)
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
		err := orchestrators.ExecuteDeleteMaterial(r.Context(), id, orchestrators.DeleteReferencedDeps{
			Artworks: ws.Artworks,
			Store:    ws.Materials,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET", "PUT", "DELETE")
	}
}

// handleMaterialFilters handles /api/materials/filters
func (a *app) handleMaterialFilters(w http.ResponseWriter, r *http.Request) {
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	a.serveFilters(w, r, ws, workspace.CollectionMaterials, ws.Materials, func(in orchestrators.SetFilterInput) error {
		return orchestrators.ExecuteSetMaterialFilter(in, orchestrators.MaterialFilterDeps{Store: ws.Materials, Values: ws})
	})
}

// handleArtworkTypes handles GET (filtered list) and POST (create) for /api/artwork-types
func (a *app) handleArtworkTypes(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	switch r.Method {
	case "GET":
		writeJSON(w, http.StatusOK, newCollectionResponse(ws.ArtworkTypes.View(), ws.FilterValues(workspace.CollectionArtworkTypes)))
	case "POST":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input artworkTypeDomain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		created, err := ws.ArtworkTypes.Add(r.Context(), input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

// handleArtworkType handles GET, PUT and DELETE for /api/artwork-types/{id}
func (a *app) handleArtworkType(w http.ResponseWriter, r *http.Request) {
	ws, sess, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	id := r.PathValue("id")

	switch r.Method {
	case "GET":
		t, ok := ws.ArtworkTypes.Get(id)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case "PUT":
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		var input artworkTypeDomain.Input
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		updated, err := ws.ArtworkTypes.Update(r.Context(), id, input)
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
		err := orchestrators.ExecuteDeleteArtworkType(r.Context(), id, orchestrators.DeleteReferencedDeps{
			Artworks: ws.Artworks,
			Store:    ws.ArtworkTypes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET", "PUT", "DELETE")
	}
}

// handleArtworkTypeFilters handles /api/artwork-types/filters
func (a *app) handleArtworkTypeFilters(w http.ResponseWriter, r *http.Request) {
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	a.serveFilters(w, r, ws, workspace.CollectionArtworkTypes, ws.ArtworkTypes, func(in orchestrators.SetFilterInput) error {
		return orchestrators.ExecuteSetArtworkTypeFilter(in, orchestrators.ArtworkTypeFilterDeps{Store: ws.ArtworkTypes, Values: ws})
	})
}
