package auth

import (
	"context"
	"log/slog"

	"github.com/medistock/medistock/internal/shared"
)

// SessionTokens serves backend tokens from the request session. It is
// installed on the shared API client as its token source.
type SessionTokens struct {
	service *Service
	logger  *slog.Logger
}

// NewSessionTokens constructs a SessionTokens.
func NewSessionTokens(service *Service, logger *slog.Logger) *SessionTokens {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionTokens{service: service, logger: logger}
}

// Token returns the access token of the session bound to ctx.
func (t *SessionTokens) Token(ctx context.Context) (string, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return "", shared.ErrUnauthenticated
	}
	token := sess.AccessToken()
	if token == "" {
		return "", shared.ErrUnauthenticated
	}
	return token, nil
}

// Refresh rotates the session tokens. A failed refresh signs the session out
// so the next page load redirects to the login form.
func (t *SessionTokens) Refresh(ctx context.Context) (string, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return "", shared.ErrUnauthenticated
	}
	refreshed, err := t.service.Refresh(ctx, sess.RefreshToken())
	if err != nil {
		t.logger.InfoContext(ctx, "session refresh failed", slog.String("user", sess.User()), slog.Any("error", err))
		sess.ClearAuth()
		return "", err
	}
	if err := sess.SetTokens(refreshed.AccessToken, refreshed.RefreshToken); err != nil {
		sess.ClearAuth()
		return "", err
	}
	if refreshed.Profile != nil && refreshed.Profile.ID != "" {
		sess.SetProfile(*refreshed.Profile)
	}
	return refreshed.AccessToken, nil
}
