package projections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"catalog/internal/adapters/storage/memory"
	"catalog/internal/application/listutil"
	"catalog/internal/application/workspace"
	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

func newTestWorkspace(t *testing.T, artworks ...artwork.Artwork) (*workspace.Workspace, *memory.Port[material.Material]) {
	t.Helper()
	materials := memory.NewPort(material.Material{ID: "m1", Name: "Copper plate", Unit: material.UnitPiece})
	ws := workspace.New("s1", workspace.Ports{
		Artworks:     memory.NewPort(artworks...),
		Materials:    materials,
		ArtworkTypes: memory.NewPort(artworktype.ArtworkType{ID: "t1", Name: "Print"}),
	}, workspace.Config{})
	if err := ws.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ws, materials
}

func listDeps(ws *workspace.Workspace) ArtworkListDeps {
	return ArtworkListDeps{Artworks: ws.Artworks, Types: ws.ArtworkTypes, Materials: ws.Materials, Filters: ws}
}

func TestQueryArtworkList_JoinsAndRenders(t *testing.T) {
	ws, _ := newTestWorkspace(t, artwork.Artwork{
		ID:          "a1",
		Title:       "Kelp Study",
		TypeID:      "t1",
		Status:      artwork.StatusAvailable,
		Dimensions:  artwork.Dimensions{WidthCM: 30, HeightCM: 40},
		Materials:   []artwork.MaterialUsage{{MaterialID: "m1", Quantity: 1}, {MaterialID: "m9", Quantity: 1}},
		PriceCents:  123456,
		Description: "**Aquatint** <script>alert(1)</script>",
	})

	res, err := QueryArtworkList(context.Background(), ArtworkListQuery{List: listutil.Params{Page: 1, PerPage: 20}}, listDeps(ws))
	if err != nil {
		t.Fatalf("QueryArtworkList: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	row := res.Rows[0]
	if row.TypeName != "Print" || row.Price != "$1,234.56" || row.Size != "30 × 40 cm" {
		t.Errorf("row = %+v", row)
	}
	if diff := cmp.Diff([]string{"Copper plate", "m9"}, row.Materials); diff != "" {
		t.Errorf("materials (-want +got):\n%s", diff)
	}
	html := string(row.DescriptionHTML)
	if !strings.Contains(html, "<strong>Aquatint</strong>") {
		t.Errorf("markdown not rendered: %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML must not pass through: %s", html)
	}
	if res.TotalCount != 1 || res.FilteredCount != 1 || res.Status.Phase.String() != "fulfilled" {
		t.Errorf("counts/status = %d/%d/%v", res.TotalCount, res.FilteredCount, res.Status)
	}
}

func TestQueryArtworkList_FilterSortPage(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var seed []artwork.Artwork
	for i, title := range []string{"Delta", "alpha", "Charlie", "bravo", "Echo"} {
		status := artwork.StatusAvailable
		if i%2 == 1 {
			status = artwork.StatusSold
		}
		seed = append(seed, artwork.Artwork{
			ID: title, Title: title, TypeID: "t1", Status: status, PriceCents: int64(i) * 100, UpdatedAt: base,
		})
	}
	ws, _ := newTestWorkspace(t, seed...)
	ws.Artworks.SetFilter(artwork.FilterStatus, artwork.HasStatus(artwork.StatusAvailable))
	ws.RecordFilter(workspace.CollectionArtworks, "status", "available")

	res, err := QueryArtworkList(context.Background(), ArtworkListQuery{
		List: listutil.Params{Page: 1, PerPage: 10, Sort: "title"},
	}, listDeps(ws))
	if err != nil {
		t.Fatalf("QueryArtworkList: %v", err)
	}
	var titles []string
	for _, r := range res.Rows {
		titles = append(titles, r.Title)
	}
	if diff := cmp.Diff([]string{"Charlie", "Delta", "Echo"}, titles); diff != "" {
		t.Errorf("titles (-want +got):\n%s", diff)
	}
	if res.TotalCount != 5 || res.FilteredCount != 3 || !res.HasActiveFilters {
		t.Errorf("counts total=%d filtered=%d active=%v", res.TotalCount, res.FilteredCount, res.HasActiveFilters)
	}
	if res.FilterValues["status"] != "available" {
		t.Errorf("FilterValues = %v", res.FilterValues)
	}

	res, _ = QueryArtworkList(context.Background(), ArtworkListQuery{
		List: listutil.Params{Page: 2, PerPage: 2, Sort: "price", Desc: true},
	}, listDeps(ws))
	if len(res.Rows) != 1 || res.Rows[0].Title != "Delta" || res.Page.TotalPages != 2 {
		t.Errorf("page 2 = %+v, info %+v", res.Rows, res.Page)
	}
}

func TestQueryWorkspaceStatus(t *testing.T) {
	ws, materials := newTestWorkspace(t)
	materials.FailNext(memory.OpAdd, errors.New("offline"))
	ws.Materials.Add(context.Background(), material.Input{Name: "Ink", Unit: material.UnitTube})

	res := QueryWorkspaceStatus(context.Background(), WorkspaceStatusDeps{
		Collections: []CollectionViewer{ws.ArtworkTypes, ws.Materials, ws.Artworks},
	})
	if res.Pending || res.Errors != 1 {
		t.Errorf("pending=%v errors=%d", res.Pending, res.Errors)
	}
	got := res.Collections[1]
	if got.Name != workspace.CollectionMaterials || got.Status.Message != "offline" || got.TotalCount != 2 {
		t.Errorf("materials status = %+v", got)
	}
	if res.Collections[0].Name != workspace.CollectionArtworkTypes || res.Collections[0].TotalCount != 1 {
		t.Errorf("types status = %+v", res.Collections[0])
	}
}

func TestFormatPrice(t *testing.T) {
	tests := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		99900:     "$999.00",
		100000:    "$1,000.00",
		123456789: "$1,234,567.89",
		-2500:     "-$25.00",
	}
	for cents, want := range tests {
		if got := FormatPrice(cents); got != want {
			t.Errorf("FormatPrice(%d) = %q, want %q", cents, got, want)
		}
	}
}
