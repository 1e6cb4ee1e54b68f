package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/ethpandaops/parkoor/pkg/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	apiKeyHeader = "X-API-Key"
	siteHeader   = "X-Site-Code"
)

// requestLogger logs incoming HTTP requests.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("Request handled")
	})
}

// requireSession admits requests carrying a session whose role is in
// allowed and injects the session into the request context.
func (s *server) requireSession(allowed auth.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := s.guard.Require(r, allowed)
			if err != nil {
				s.writeError(w, err)

				return
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAPIKey checks the shared device key. Both sides are hashed first
// so the comparison time does not depend on the key length either.
func (s *server) requireAPIKey(next http.Handler) http.Handler {
	want := sha256.Sum256([]byte(s.cfg.Auth.APIKey))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := sha256.Sum256([]byte(r.Header.Get(apiKeyHeader)))

		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			writeJSON(w, http.StatusUnauthorized,
				errorResponse{"invalid api key"})

			return
		}

		next.ServeHTTP(w, r)
	})
}

// siteHint returns the site requested by the client, if any.
func siteHint(r *http.Request) string {
	if h := r.Header.Get(siteHeader); h != "" {
		return h
	}

	return r.URL.Query().Get("site")
}

// resolveSite fixes the site for r. A valid session cookie binds the
// request to the session's site even on API key endpoints.
func (s *server) resolveSite(r *http.Request) string {
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		return s.sites.Resolve(&session, siteHint(r))
	}

	if session, ok := s.guard.Session(r); ok {
		return s.sites.Resolve(&session, siteHint(r))
	}

	return s.sites.Resolve(nil, siteHint(r))
}
