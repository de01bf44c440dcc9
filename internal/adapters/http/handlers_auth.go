package web

import (
	"errors"
	"log/slog"
	"net/http"

	"catalog/internal/adapters/http/middleware"
	"catalog/internal/application/orchestrators"
)

// handleLogin serves the login form (GET) and signs in (POST).
func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/artworks", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{})
	case "POST":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
			AccountStore: a.accounts,
			Now:          a.now,
		})
		if err != nil {
			if !errors.Is(err, orchestrators.ErrInvalidCredentials) && !errors.Is(err, orchestrators.ErrAccountLocked) {
				internalError(w, err)
				return
			}
			renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
				"Error": err.Error(),
				"Email": input.Email,
			})
			return
		}

		sess, err := a.sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, sess.Token, a.cfg.SessionTTL)
		slog.Info("auth_event", "event", "session_created", "account_id", result.AccountID, "role", result.Role)
		http.Redirect(w, r, "/artworks", http.StatusSeeOther)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

// handleLogout ends the session and discards its workspace.
func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		methodNotAllowed(w, "POST")
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		a.sessions.Delete(token)
		a.workspaces.Drop(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
