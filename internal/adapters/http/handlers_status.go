package web

import (
	"net/http"
	"strconv"
	"time"

	"catalog/internal/application/projections"
)

// handleHealth handles GET /healthz
func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": a.workspaces.Len(),
	})
}

// handleWorkspaceStatus handles GET /api/workspace
func (a *app) handleWorkspaceStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w, "GET")
		return
	}
	ws, _, err := a.workspace(r)
	if err != nil {
		internalError(w, err)
		return
	}
	result := projections.QueryWorkspaceStatus(r.Context(), projections.WorkspaceStatusDeps{
		Collections: []projections.CollectionViewer{ws.ArtworkTypes, ws.Materials, ws.Artworks},
	})
	writeJSON(w, http.StatusOK, result)
}

// handlePerf handles GET /api/perf?minutes=N&top=N
func (a *app) handlePerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		methodNotAllowed(w, "GET")
		return
	}
	if a.collector == nil {
		http.Error(w, "performance collection disabled", http.StatusNotFound)
		return
	}
	minutes := queryInt(r, "minutes", 15)
	top := queryInt(r, "top", 10)
	snap := a.collector.Snapshot(a.now().Add(-time.Duration(minutes)*time.Minute), top)
	writeJSON(w, http.StatusOK, snap)
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
