package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// ErrMissingToken is returned when a sign-in response carries no access token.
var ErrMissingToken = errors.New("auth: response carried no access token")

// Service handles authentication against the backend.
type Service struct {
	client *apiclient.Client
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// SignIn exchanges credentials for a token pair and the operator profile.
// A 401 from the backend maps to shared.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	raw, err := s.client.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/signin",
		Body:      creds,
		Anonymous: true,
	})
	if err != nil {
		if apiclient.IsStatus(err, http.StatusUnauthorized) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	session, err := s.decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if session.Profile == nil || session.Profile.ID == "" {
		profile, err := s.Profile(ctx, session.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("auth: load profile: %w", err)
		}
		session.Profile = profile
	}
	return session, nil
}

// SignUp registers a new operator account.
func (s *Service) SignUp(ctx context.Context, reg Registration) error {
	_, err := s.client.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/signup",
		Body:      reg,
		Anonymous: true,
	})
	return err
}

// Refresh exchanges a refresh token for a new token pair. The backend may
// omit the refresh token, in which case the old one is kept.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, shared.ErrUnauthenticated
	}
	raw, err := s.client.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/refresh",
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	session, err := s.decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		session.RefreshToken = refreshToken
	}
	return session, nil
}

// Profile loads the operator profile using accessToken.
func (s *Service) Profile(ctx context.Context, accessToken string) (*shared.Profile, error) {
	raw, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/profile",
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	user, ok := apiclient.UnwrapRecord[remoteUser](raw)
	if !ok || user.ID.Empty() {
		return nil, shared.ErrNotFound
	}
	profile := user.profile()
	return &profile, nil
}

// Logout revokes accessToken on the backend.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	_, err := s.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Token:  accessToken,
	})
	return err
}

func (s *Service) decodeSession(raw []byte) (*Session, error) {
	payload, ok := apiclient.UnwrapRecord[tokenPayload](raw)
	if !ok || payload.access() == "" {
		return nil, ErrMissingToken
	}
	session := &Session{AccessToken: payload.access(), RefreshToken: payload.refresh()}
	if len(payload.User) > 0 {
		if user, ok := apiclient.UnwrapRecord[remoteUser](payload.User); ok && !user.ID.Empty() {
			profile := user.profile()
			session.Profile = &profile
		}
	}
	return session, nil
}
