package auth

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches an authenticated session to ctx.
func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, &session)
}

// SessionFromContext extracts the session attached by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	if !ok || s == nil {
		return Session{}, false
	}

	return *s, true
}
