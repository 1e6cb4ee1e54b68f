package site

import (
	"testing"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("COMMON")

	bound := &auth.Session{Username: "guard", Role: auth.RoleGuard, SiteCode: "A"}
	unbound := &auth.Session{Username: "admin", Role: auth.RoleAdmin}

	tests := []struct {
		name    string
		session *auth.Session
		hint    string
		want    string
	}{
		{name: "session site ignores hint", session: bound, hint: "B", want: "A"},
		{name: "session site without hint", session: bound, want: "A"},
		{name: "session without site uses hint", session: unbound, hint: " tower-b ", want: "TOWER-B"},
		{name: "no session uses hint", hint: "b", want: "B"},
		{name: "blank hint falls back", hint: "   ", want: "COMMON"},
		{name: "nothing falls back", want: "COMMON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.session, tt.hint))
		})
	}
}

func TestResolver_SessionIsolation(t *testing.T) {
	r := NewResolver("COMMON")
	session := &auth.Session{SiteCode: "A"}

	for _, hint := range []string{"", "A", "B", "common", "  b  ", "../A"} {
		assert.Equal(t, "A", r.Resolve(session, hint), "hint %q", hint)
	}
}

func TestResolver_Normalize(t *testing.T) {
	r := NewResolver(" common ")

	assert.Equal(t, "COMMON", r.Default())
	assert.Equal(t, "COMMON", r.Normalize(""))
	assert.Equal(t, "ABC", r.Normalize(" abc\t"))
}
