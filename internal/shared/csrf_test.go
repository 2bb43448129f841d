package shared

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSessionManager(nil, "medistock_session", "session-secret", 0, false).newSession()
}

func TestCSRFEnsureTokenIsStable(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	sess := newTestSession()

	first, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	second, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.Contains(first, "."))
	assert.NoError(t, m.VerifyToken(context.Background(), sess, first))
}

func TestCSRFVerifyRejects(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	sess := newTestSession()
	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), nil, token), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, token+"x"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(context.Background(), newTestSession(), token), ErrCSRFTokenMissing)
}

func TestCSRFReplacesForeignTokens(t *testing.T) {
	m := NewCSRFManager("csrf-secret")
	sess := newTestSession()
	sess.Set(CSRFSessionKey, "planted.value")

	assert.ErrorIs(t, m.VerifyToken(context.Background(), sess, "planted.value"), ErrCSRFTokenMismatch)

	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.NotEqual(t, "planted.value", token)

	other := NewCSRFManager("other-secret")
	assert.ErrorIs(t, other.VerifyToken(context.Background(), sess, token), ErrCSRFTokenMismatch)
}

func TestProfileFromContext(t *testing.T) {
	_, ok := ProfileFromContext(context.Background())
	assert.False(t, ok)

	sess := newTestSession()
	sess.SetProfile(Profile{ID: "7", FirstName: "Ada"})
	ctx := ContextWithSession(context.Background(), sess)
	_, ok = ProfileFromContext(ctx)
	assert.False(t, ok, "profile without tokens is signed out")

	require.NoError(t, sess.SetTokens("access", "refresh"))
	profile, ok := ProfileFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ada", profile.FirstName)
}
