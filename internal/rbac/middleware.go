package rbac

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/medistock/medistock/internal/platform/httpx"
	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/internal/view"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/auth/login"

// Middleware wires RBAC authorization helpers for HTTP handlers. Permission
// codes come from the profile cached in the session at sign-in.
type Middleware struct {
	Views  *view.Responder
	Logger *slog.Logger
}

// RequireAuth redirects requests without a signed-in session to the login page.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentProfile(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		m.unauthenticated(w, r)
	})
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(normalized, func(p shared.Profile) bool { return p.CanAny(normalized...) })
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(normalized, func(p shared.Profile) bool { return p.CanAll(normalized...) })
}

func (m Middleware) require(perms []string, allowed func(shared.Profile) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := currentProfile(r)
			if !ok {
				m.unauthenticated(w, r)
				return
			}
			if len(perms) == 0 || allowed(profile) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Info("rbac denied", slog.String("user", profile.ID), slog.String("path", r.URL.Path), slog.Any("required", perms))
			}
			m.forbidden(w, r)
		})
	}
}

func (m Middleware) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) || r.Method != http.MethodGet {
		if httpx.WantsJSON(r) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Sign in to continue.")
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	target := LoginPath
	if next := r.URL.RequestURI(); next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (m Middleware) forbidden(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) || m.Views == nil {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "You do not have permission to perform this action.")
		return
	}
	m.Views.Forbidden(w, r)
}

func currentProfile(r *http.Request) (shared.Profile, bool) {
	return shared.ProfileFromContext(r.Context())
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, seen := unique[p]; seen {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
