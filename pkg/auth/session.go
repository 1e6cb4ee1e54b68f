package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity carried inside a session token. There is no
// server-side session table: logout only deletes the cookie, and a leaked
// token stays valid until it ages out.
type Session struct {
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	SiteCode string    `json:"site_code"`
	IssuedAt time.Time `json:"issued_at"`
}

type sessionClaims struct {
	Username string `json:"u"`
	Role     string `json:"r"`
	SiteCode string `json:"s,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec issues and redeems session tokens.
type SessionCodec struct {
	signer signer
}

// NewSessionCodec creates a session codec. secret and salt must differ
// from the SSO codec's.
func NewSessionCodec(secret, salt string, maxAge time.Duration) *SessionCodec {
	return &SessionCodec{signer: newSigner(secret, salt, maxAge)}
}

// WithClock overrides the time source.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	c.signer.now = now

	return c
}

// MaxAge returns the configured session lifetime.
func (c *SessionCodec) MaxAge() time.Duration {
	return c.signer.maxAge
}

// Issue signs a new session token for the given identity.
func (c *SessionCodec) Issue(username string, role Role, siteCode string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}

	claims := sessionClaims{
		Username:         username,
		Role:             string(role),
		SiteCode:         siteCode,
		RegisteredClaims: c.signer.registered(),
	}
	claims.Subject = username

	return c.signer.sign(claims)
}

// Redeem returns the session carried by token. Missing, forged, malformed
// and expired tokens all report false; callers cannot tell them apart.
func (c *SessionCodec) Redeem(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	var claims sessionClaims
	if err := c.signer.parse(token, &claims); err != nil {
		return Session{}, false
	}

	role, err := ParseRole(claims.Role)
	if err != nil || claims.Username == "" {
		return Session{}, false
	}

	return Session{
		Username: claims.Username,
		Role:     role,
		SiteCode: claims.SiteCode,
		IssuedAt: claims.IssuedAt.Time,
	}, true
}
