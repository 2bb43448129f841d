package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ProfileFromContext returns the signed-in operator of the request session.
// Sessions without backend tokens count as signed out even when a stale
// profile is still cached.
func ProfileFromContext(ctx context.Context) (Profile, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || !sess.Authenticated() {
		return Profile{}, false
	}
	return sess.Profile()
}
