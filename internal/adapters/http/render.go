package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"

	"catalog/internal/adapters/http/middleware"
	"catalog/internal/application/entitystate"
	"catalog/internal/application/listutil"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/projections"
	"catalog/internal/domain/pricing"
)

//go:embed templates/*.html
var templateFS embed.FS

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps an orchestrator or store error to a status code.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case entitystate.IsValidation(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, orchestrators.ErrUnknownType), errors.Is(err, pricing.ErrUnknownMaterial), errors.Is(err, pricing.ErrNegativeHours):
		// the artwork cannot be priced from the current workspace state
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, orchestrators.ErrUnknownFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orchestrators.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, entitystate.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, entitystate.ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	case entitystate.IsPort(err):
		slog.Warn("port_error", "error", err.Error())
		http.Error(w, "catalog storage unavailable, change was not saved", http.StatusBadGateway)
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_response", "error", err)
	}
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, name, data)
}

// renderTemplateStatus renders into a buffer first so a template error can still become a 500.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentRole":  func() string { return sess.Role },
		"currentEmail": func() string { return sess.Email },
		"isLoggedIn":   func() bool { return loggedIn },
		"canEdit":      func() bool { return loggedIn && sess.CanEdit() },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"formatPrice":  projections.FormatPrice,
		"join":         strings.Join,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"pageQuery":    pageQuery,
		"sortQuery":    sortQuery,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", name, err))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// pageQuery builds the query string for page n keeping the current sort and page size.
func pageQuery(n int, p listutil.Params) template.URL {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		q.Set("dir", p.Dir())
	}
	return template.URL(q.Encode())
}

// sortQuery toggles direction when col is already the active sort.
func sortQuery(col string, p listutil.Params) template.URL {
	dir := "asc"
	if p.Sort == col && !p.Desc {
		dir = "desc"
	}
	q := url.Values{}
	q.Set("sort", col)
	q.Set("dir", dir)
	q.Set("per_page", strconv.Itoa(p.PerPage))
	return template.URL(q.Encode())
}
