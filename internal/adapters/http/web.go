package web

import (
	"log/slog"
	"net/http"
	"time"

	"catalog/internal/adapters/http/middleware"
	"catalog/internal/adapters/http/perf"
	"catalog/internal/application/orchestrators"
	"catalog/internal/application/workspace"
	domainAccount "catalog/internal/domain/account"
)

// AccountStore is the account surface the HTTP layer needs for login.
type AccountStore interface {
	orchestrators.AccountStoreForLogin
}

// Config holds HTTP settings resolved at startup.
type Config struct {
	StaticDir      string        // served under /static/ when set
	CSRFKey        []byte        // 32 bytes
	TrustedOrigins []string      // host:port values accepted by the CSRF origin check
	RateLimit      int           // requests per second per client; 0 disables
	SlowRequest    time.Duration // WARN threshold for request timing
	SessionTTL     time.Duration
	SecureCookies  bool
}

// Deps holds the collaborators every handler reaches through.
type Deps struct {
	Workspaces *workspace.Manager
	Accounts   AccountStore
	Sessions   *middleware.SessionStore // created when nil
	Collector  *perf.Collector          // optional
	Now        func() time.Time         // optional
}

// app carries the dependencies of one mux. Handlers are methods on it.
type app struct {
	cfg        Config
	workspaces *workspace.Manager
	accounts   AccountStore
	sessions   *middleware.SessionStore
	collector  *perf.Collector
	now        func() time.Time
}

// NewMux wires HTTP handlers for the catalog.
// PRE: cfg.CSRFKey is 32 bytes; deps.Workspaces and deps.Accounts are non-nil
func NewMux(cfg Config, deps Deps) http.Handler {
	a := newApp(cfg, deps)
	middleware.SecureCookies = cfg.SecureCookies

	mux := http.NewServeMux()
	if cfg.StaticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}
	a.registerRoutes(mux)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Second)
	}

	// Request order: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.TrustedOrigins),
		middleware.Auth(a.sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(a.collector, cfg.SlowRequest),
	)
}

func newApp(cfg Config, deps Deps) *app {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = middleware.DefaultSessionTTL
	}
	a := &app{
		cfg:        cfg,
		workspaces: deps.Workspaces,
		accounts:   deps.Accounts,
		sessions:   deps.Sessions,
		collector:  deps.Collector,
		now:        deps.Now,
	}
	if a.sessions == nil {
		a.sessions = middleware.NewSessionStore(cfg.SessionTTL)
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

func (a *app) registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/artworks", http.StatusSeeOther)
	})

	mux.Handle("/artworks", authed(a.handleArtworksPage))
	mux.Handle("/artworks/filters", authed(a.handleArtworksPageFilters))

	mux.Handle("/api/artworks", authed(a.handleArtworks))
	mux.Handle("/api/artworks/filters", authed(a.handleArtworkFilters))
	mux.Handle("/api/artworks/{id}", authed(a.handleArtwork))
	mux.Handle("/api/artworks/{id}/quote", authed(a.handleArtworkQuote))
	mux.Handle("/api/artworks/{id}/price", authed(a.handleArtworkPrice))

	mux.Handle("/api/materials", authed(a.handleMaterials))
	mux.Handle("/api/materials/filters", authed(a.handleMaterialFilters))
	mux.Handle("/api/materials/{id}", authed(a.handleMaterial))

	mux.Handle("/api/artwork-types", authed(a.handleArtworkTypes))
	mux.Handle("/api/artwork-types/filters", authed(a.handleArtworkTypeFilters))
	mux.Handle("/api/artwork-types/{id}", authed(a.handleArtworkType))

	mux.Handle("/api/workspace", authed(a.handleWorkspaceStatus))
	mux.Handle("/api/perf", middleware.RequireRole(domainAccount.RoleAdmin)(http.HandlerFunc(a.handlePerf)))
}

// workspace returns the caller's workspace, loading it on first use.
// A failed load is logged and the workspace is still served; its stores
// report the error status and the next request retries the load.
func (a *app) workspace(r *http.Request) (*workspace.Workspace, middleware.Session, error) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	ws, err := a.workspaces.Get(r.Context(), sess.Token)
	if ws == nil {
		return nil, sess, err
	}
	if err != nil {
		slog.Warn("workspace_degraded", "account_id", sess.AccountID, "error", err)
	}
	return ws, sess, nil
}
