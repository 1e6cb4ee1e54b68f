package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPermission(t *testing.T) {
	tests := []struct {
		level string
		want  Role
	}{
		{level: "admin", want: RoleAdmin},
		{level: "ADMIN", want: RoleAdmin},
		{level: "site_admin", want: RoleGuard},
		{level: "SITE_ADMIN", want: RoleGuard},
		{level: "User", want: RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := MapPermission(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapPermission_Rejects(t *testing.T) {
	for _, level := range []string{"", "unknown", "guard", "viewer", " admin"} {
		t.Run(level, func(t *testing.T) {
			_, err := MapPermission(level)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleGuard, RoleViewer} {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("site_admin")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseRole("Admin")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoleSet(t *testing.T) {
	set := Roles(RoleAdmin, RoleGuard)

	assert.True(t, set.Has(RoleAdmin))
	assert.True(t, set.Has(RoleGuard))
	assert.False(t, set.Has(RoleViewer))
	assert.False(t, Roles().Has(RoleAdmin))
}
