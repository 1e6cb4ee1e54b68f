package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/ethpandaops/parkoor/pkg/store"
	"github.com/sirupsen/logrus"
)

var (
	verifyPassword = auth.VerifyPassword

	// dummyPasswordHash is verified against when the user does not exist
	// so unknown usernames cost the same key derivation as wrong passwords.
	dummyPasswordHash = sync.OnceValue(func() string {
		hash, err := auth.HashPassword("parkoor-unknown-user")
		if err != nil {
			return ""
		}

		return hash
	})
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Site     string `json:"site"`
}

type loginResponse struct {
	User sessionResponse `json:"user"`
}

type sessionResponse struct {
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
	SiteCode string    `json:"site_code"`
}

// decodeLogin accepts a JSON body or a classic HTML form post.
func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, err
		}

		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		req.Site = r.PostForm.Get("site")
	}

	req.Username = strings.TrimSpace(req.Username)

	return req, nil
}

// handleLogin authenticates a user with username/password and sets a
// session cookie bound to the requested (or default) site.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Auth.Local.Enabled {
		writeJSON(w, http.StatusNotFound,
			errorResponse{"local login is disabled"})

		return
	}

	req, err := decodeLogin(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"invalid request body"})

		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest,
			errorResponse{"username and password are required"})

		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.writeError(w, err)

		return
	}

	stored := dummyPasswordHash()
	if user != nil {
		stored = user.PasswordHash
	}

	if !verifyPassword(req.Password, stored) || user == nil {
		s.log.WithField("username", req.Username).Info("Login failed")
		writeJSON(w, http.StatusUnauthorized,
			errorResponse{"invalid credentials"})

		return
	}

	role, err := auth.ParseRole(user.Role)
	if err != nil {
		s.writeError(w, err)

		return
	}

	hint := req.Site
	if hint == "" {
		hint = siteHint(r)
	}

	siteCode := s.sites.Resolve(nil, hint)

	if err := s.startSession(w, r, user.Username, role, siteCode); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User: sessionResponse{Username: user.Username, Role: role, SiteCode: siteCode},
	})
}

// handleLogout clears the session cookie. The token itself stays valid
// until it ages out; there is no server-side session to revoke.
func (s *server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.Session.CookieName,
		Value:    "",
		Path:     s.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleSSO redeems a portal handoff token, mints a session and redirects
// into the app.
func (s *server) handleSSO(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeJSON(w, http.StatusNotFound,
			errorResponse{"sso is disabled"})

		return
	}

	sc, err := s.sso.Redeem(r.URL.Query().Get("ctx"))

	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{"link expired"})

		return
	case errors.Is(err, auth.ErrTokenInvalid):
		writeJSON(w, http.StatusUnauthorized, errorResponse{"invalid link"})

		return
	case err != nil:
		s.writeError(w, err)

		return
	}

	role, err := auth.MapPermission(sc.PermissionLevel)
	if err != nil {
		s.log.WithField("permission_level", sc.PermissionLevel).
			Warn("Rejected SSO handoff with unmapped permission level")
		s.writeError(w, err)

		return
	}

	siteCode := s.sites.Normalize(sc.SiteCode)

	username := strings.TrimSpace(sc.Username)
	if username == "" {
		username = "sso:" + siteCode
	}

	if err := s.startSession(w, r, username, role, siteCode); err != nil {
		s.writeError(w, err)

		return
	}

	s.log.WithFields(logrus.Fields{
		"username": username,
		"role":     role,
		"site":     siteCode,
	}).Info("SSO session started")

	http.Redirect(w, r, s.appURL(s.cfg.Auth.SSO.RedirectPath), http.StatusFound)
}

// handleMe returns the current session.
func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		s.writeError(w, auth.ErrUnauthenticated)

		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Username: session.Username,
		Role:     session.Role,
		SiteCode: session.SiteCode,
	})
}

// startSession issues a session token and sets it as an HttpOnly cookie.
func (s *server) startSession(
	w http.ResponseWriter,
	r *http.Request,
	username string,
	role auth.Role,
	siteCode string,
) error {
	token, err := s.sessions.Issue(username, role, siteCode)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.Session.CookieName,
		Value:    token,
		Path:     s.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(s.sessions.MaxAge().Seconds()),
	})

	return nil
}
