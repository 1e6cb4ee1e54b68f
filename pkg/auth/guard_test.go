package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_Require(t *testing.T) {
	codec := NewSessionCodec("secret", "parking-session", time.Hour)
	guard := NewGuard(codec, "parking_session")

	viewerToken, err := codec.Issue("viewer", RoleViewer, "A")
	require.NoError(t, err)

	adminToken, err := codec.Issue("admin", RoleAdmin, "A")
	require.NoError(t, err)

	staff := Roles(RoleAdmin, RoleGuard)

	tests := []struct {
		name    string
		cookie  string
		allowed RoleSet
		wantErr error
	}{
		{name: "no cookie", allowed: staff, wantErr: ErrUnauthenticated},
		{name: "garbage cookie", cookie: "junk", allowed: staff, wantErr: ErrUnauthenticated},
		{name: "viewer on staff endpoint", cookie: viewerToken, allowed: staff, wantErr: ErrForbidden},
		{name: "admin on staff endpoint", cookie: adminToken, allowed: staff},
		{name: "empty allowed set", cookie: adminToken, allowed: Roles(), wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "parking_session", Value: tt.cookie})
			}

			session, err := guard.Require(req, tt.allowed)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "admin", session.Username)
		})
	}
}

func TestGuard_Session(t *testing.T) {
	codec := NewSessionCodec("secret", "parking-session", time.Hour)
	guard := NewGuard(codec, "parking_session")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := guard.Session(req)
	assert.False(t, ok)

	token, err := codec.Issue("guard", RoleGuard, "B")
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "parking_session", Value: token})

	s, ok := guard.Session(req)
	require.True(t, ok)
	assert.Equal(t, "B", s.SiteCode)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithSession(context.Background(), Session{Username: "u", Role: RoleGuard})
	s, ok := SessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, RoleGuard, s.Role)
}
