package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL applies when Config.IdleTTL is not positive.
const DefaultIdleTTL = 30 * time.Minute

// ErrNoSession is returned by Get for an empty session id.
var ErrNoSession = errors.New("workspace requires a session")

// Manager hands out one Workspace per session and evicts idle ones.
// No two sessions share a workspace.
type Manager struct {
	ports Ports
	cfg   Config

	mu     sync.Mutex
	spaces map[string]*Workspace
}

// NewManager creates a Manager.
func NewManager(ports Ports, cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		ports:  ports,
		cfg:    cfg,
		spaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace for sessionID, creating and loading it on first use.
// A failed load returns the error and is retried by the next Get.
// POST: the returned workspace is touched
func (m *Manager) Get(ctx context.Context, sessionID string) (*Workspace, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	now := m.cfg.now()

	m.mu.Lock()
	ws, ok := m.spaces[sessionID]
	if !ok {
		ws = New(sessionID, m.ports, m.cfg)
		m.spaces[sessionID] = ws
		m.logger().Info("workspace_created", "active", len(m.spaces))
	}
	m.mu.Unlock()

	ws.Touch(now)
	if err := ws.ensureLoaded(ctx); err != nil {
		m.logger().Warn("workspace_load_failed", "error", err)
		return ws, err
	}
	return ws, nil
}

// Peek returns the workspace for sessionID without creating or loading it.
func (m *Manager) Peek(sessionID string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.spaces[sessionID]
	return ws, ok
}

// Drop discards the workspace for sessionID. Unknown ids are ignored.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spaces[sessionID]; ok {
		delete(m.spaces, sessionID)
		m.logger().Info("workspace_dropped", "active", len(m.spaces))
	}
}

// Sweep drops every workspace idle for longer than the TTL and returns how many went.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ws := range m.spaces {
		if now.Sub(ws.LastUsed()) > m.cfg.IdleTTL {
			delete(m.spaces, id)
			n++
		}
	}
	if n > 0 {
		m.logger().Info("workspace_swept", "dropped", n, "active", len(m.spaces))
	}
	return n
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.cfg.now())
		}
	}
}

func (m *Manager) logger() *slog.Logger {
	if m.cfg.Logger != nil {
		return m.cfg.Logger
	}
	return slog.Default()
}
