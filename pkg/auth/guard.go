package auth

import "net/http"

// Guard gates protected operations on a session cookie and a role set.
type Guard struct {
	sessions   *SessionCodec
	cookieName string
}

// NewGuard creates a guard reading sessions from cookieName.
func NewGuard(sessions *SessionCodec, cookieName string) *Guard {
	return &Guard{sessions: sessions, cookieName: cookieName}
}

// Session redeems the request's session cookie, if any.
func (g *Guard) Session(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil {
		return Session{}, false
	}

	return g.sessions.Redeem(cookie.Value)
}

// Require returns the request's session when its role is in allowed.
func (g *Guard) Require(r *http.Request, allowed RoleSet) (Session, error) {
	token := ""
	if cookie, err := r.Cookie(g.cookieName); err == nil {
		token = cookie.Value
	}

	return g.Authorize(token, allowed)
}

// Authorize is Require for a raw token. An empty allowed set admits nobody.
func (g *Guard) Authorize(token string, allowed RoleSet) (Session, error) {
	session, ok := g.sessions.Redeem(token)
	if !ok {
		return Session{}, ErrUnauthenticated
	}

	if !allowed.Has(session.Role) {
		return Session{}, ErrForbidden
	}

	return session, nil
}
