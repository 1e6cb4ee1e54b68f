// Package site decides which tenant a request is scoped to.
package site

import (
	"strings"

	"github.com/ethpandaops/parkoor/pkg/auth"
)

// Resolver fixes the site code for a request.
type Resolver struct {
	defaultCode string
}

// NewResolver creates a resolver that falls back to defaultCode. An empty
// default is normalized like any other code.
func NewResolver(defaultCode string) *Resolver {
	return &Resolver{defaultCode: strings.ToUpper(strings.TrimSpace(defaultCode))}
}

// Default returns the fallback site code.
func (r *Resolver) Default() string {
	return r.defaultCode
}

// Normalize trims and upper-cases code, mapping an empty result to the
// default.
func (r *Resolver) Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return r.defaultCode
	}

	return code
}

// Resolve returns the site for a request. A session bound to a site always
// wins over the hint, so an operator cannot reach another site by sending
// a header. Without a session site the normalized hint is used, and
// without either the default.
func (r *Resolver) Resolve(session *auth.Session, hint string) string {
	if session != nil {
		if code := strings.ToUpper(strings.TrimSpace(session.SiteCode)); code != "" {
			return code
		}
	}

	return r.Normalize(hint)
}
