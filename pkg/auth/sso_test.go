package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSOCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	codec := NewSSOCodec("portal-secret", "parking-sso-context", 5*time.Minute).WithClock(clock.Now)

	token, err := codec.Issue(SSOContext{SiteCode: "TOWER-A", PermissionLevel: "site_admin", Username: "kim"})
	require.NoError(t, err)

	got, err := codec.Redeem(token)
	require.NoError(t, err)
	assert.Equal(t, "TOWER-A", got.SiteCode)
	assert.Equal(t, "site_admin", got.PermissionLevel)
	assert.Equal(t, "kim", got.Username)
}

func TestSSOCodec_DistinguishesFailures(t *testing.T) {
	issued := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	codec := NewSSOCodec("portal-secret", "parking-sso-context", 5*time.Minute).WithClock(clock.Now)

	token, err := codec.Issue(SSOContext{SiteCode: "A", PermissionLevel: "admin"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		clock.t = issued.Add(5*time.Minute + time.Second)
		defer func() { clock.t = issued }()

		_, err := codec.Redeem(token)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := codec.Redeem(token + "x")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := codec.Redeem("  ")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing claims", func(t *testing.T) {
		claims := ssoClaims{SiteCode: "A", RegisteredClaims: codec.signer.registered()}
		bare, err := codec.signer.sign(claims)
		require.NoError(t, err)

		_, err = codec.Redeem(bare)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSSOCodec_DoesNotAcceptSessionTokens(t *testing.T) {
	sessions := NewSessionCodec("shared", "parking-session", time.Hour)
	sso := NewSSOCodec("shared", "parking-sso-context", time.Hour)

	token, err := sessions.Issue("admin", RoleAdmin, "A")
	require.NoError(t, err)

	_, err = sso.Redeem(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSSOCodec_IssueValidation(t *testing.T) {
	codec := NewSSOCodec("s", "salt", time.Minute)

	_, err := codec.Issue(SSOContext{SiteCode: "A"})
	require.ErrorIs(t, err, ErrInvalidInput)
}
