package projections

import (
	"context"

	"catalog/internal/application/entitystate"
)

// CollectionStatus summarises one store of a workspace.
type CollectionStatus struct {
	Name          string                    `json:"name"`
	Status        entitystate.RequestStatus `json:"status"`
	TotalCount    int                       `json:"total_count"`
	FilteredCount int                       `json:"filtered_count"`
	ActiveFilters int                       `json:"active_filters"`
	HasChange     bool                      `json:"has_change"`
}

// WorkspaceStatusResult carries the query result.
type WorkspaceStatusResult struct {
	Collections []CollectionStatus `json:"collections"`
	Pending     bool               `json:"pending"`
	Errors      int                `json:"errors"`
}

// WorkspaceStatusDeps holds dependencies for QueryWorkspaceStatus.
type WorkspaceStatusDeps struct {
	Collections []CollectionViewer
}

// QueryWorkspaceStatus reports the request status and counts of every collection.
// INVARIANT: collections are reported in the order given
func QueryWorkspaceStatus(_ context.Context, deps WorkspaceStatusDeps) WorkspaceStatusResult {
	res := WorkspaceStatusResult{Collections: make([]CollectionStatus, 0, len(deps.Collections))}
	for _, c := range deps.Collections {
		st := c.Status()
		res.Collections = append(res.Collections, CollectionStatus{
			Name:          c.Name(),
			Status:        st,
			TotalCount:    c.TotalCount(),
			FilteredCount: c.FilteredCount(),
			ActiveFilters: c.ActiveFiltersCount(),
			HasChange:     c.HasChange(),
		})
		switch st.Phase {
		case entitystate.PhasePending:
			res.Pending = true
		case entitystate.PhaseError:
			res.Errors++
		}
	}
	return res
}
