package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SSOContext is the identity assertion handed off by the external portal.
// Username is optional; the portal may omit it.
type SSOContext struct {
	SiteCode        string    `json:"site_code"`
	PermissionLevel string    `json:"permission_level"`
	Username        string    `json:"username,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`
}

type ssoClaims struct {
	SiteCode        string `json:"site_code"`
	PermissionLevel string `json:"permission_level"`
	jwt.RegisteredClaims
}

// SSOCodec issues and redeems portal handoff tokens. Unlike sessions, it
// reports why a token was rejected so the user can be told whether the
// link expired or is broken.
type SSOCodec struct {
	signer signer
}

// NewSSOCodec creates a handoff codec.
func NewSSOCodec(secret, salt string, maxAge time.Duration) *SSOCodec {
	return &SSOCodec{signer: newSigner(secret, salt, maxAge)}
}

// WithClock overrides the time source.
func (c *SSOCodec) WithClock(now func() time.Time) *SSOCodec {
	c.signer.now = now

	return c
}

// Issue signs a handoff token. Used by the portal side and for testing.
func (c *SSOCodec) Issue(sc SSOContext) (string, error) {
	if sc.SiteCode == "" || sc.PermissionLevel == "" {
		return "", fmt.Errorf("%w: site code and permission level are required", ErrInvalidInput)
	}

	claims := ssoClaims{
		SiteCode:         sc.SiteCode,
		PermissionLevel:  sc.PermissionLevel,
		RegisteredClaims: c.signer.registered(),
	}
	claims.Subject = sc.Username

	return c.signer.sign(claims)
}

// Redeem verifies token and returns its context. Errors are
// ErrInvalidInput (missing token or claims), ErrTokenInvalid or
// ErrTokenExpired.
func (c *SSOCodec) Redeem(token string) (SSOContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SSOContext{}, fmt.Errorf("%w: missing context token", ErrInvalidInput)
	}

	var claims ssoClaims
	if err := c.signer.parse(token, &claims); err != nil {
		return SSOContext{}, err
	}

	if strings.TrimSpace(claims.SiteCode) == "" || strings.TrimSpace(claims.PermissionLevel) == "" {
		return SSOContext{}, fmt.Errorf("%w: context token is missing required claims", ErrInvalidInput)
	}

	return SSOContext{
		SiteCode:        claims.SiteCode,
		PermissionLevel: claims.PermissionLevel,
		Username:        claims.Subject,
		IssuedAt:        claims.IssuedAt.Time,
	}, nil
}
