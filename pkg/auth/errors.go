package auth

import "errors"

var (
	// ErrUnauthenticated means no usable identity was presented: the
	// session is missing, expired, forged or the API key is wrong.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden means the identity is valid but its role is not allowed.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrInvalidInput covers malformed claims, unmapped permission levels
	// and missing required fields.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrTokenExpired is returned by the SSO codec for a correctly signed
	// token older than its max age.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenInvalid is returned by the SSO codec for a malformed or
	// tampered token.
	ErrTokenInvalid = errors.New("auth: token invalid")
)
