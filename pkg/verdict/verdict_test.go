package verdict

import (
	"testing"
	"time"

	"github.com/ethpandaops/parkoor/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestEvaluate_Priority(t *testing.T) {
	const today = "2026-06-01"

	tests := []struct {
		name    string
		vehicle *store.Vehicle
		want    Verdict
	}{
		{name: "no record", want: Unregistered},
		{
			name:    "blocked and expired reports blocked",
			vehicle: &store.Vehicle{Status: "blocked", ValidTo: strp("2026-01-31")},
			want:    Blocked,
		},
		{
			name:    "blocked is case insensitive",
			vehicle: &store.Vehicle{Status: " BLOCKED "},
			want:    Blocked,
		},
		{
			name:    "temp past valid_to reports expired",
			vehicle: &store.Vehicle{Status: "temp", ValidTo: strp("2026-02-28")},
			want:    Expired,
		},
		{
			name:    "temp within window",
			vehicle: &store.Vehicle{Status: "temp", ValidTo: strp("2026-06-30")},
			want:    Temp,
		},
		{
			name:    "valid_to equal to today is still valid",
			vehicle: &store.Vehicle{Status: "active", ValidTo: strp(today)},
			want:    OK,
		},
		{
			name:    "active without valid_to",
			vehicle: &store.Vehicle{Status: "active"},
			want:    OK,
		},
		{
			name:    "empty status defaults to active",
			vehicle: &store.Vehicle{},
			want:    OK,
		},
		{
			name:    "free text status is ok",
			vehicle: &store.Vehicle{Status: "visitor"},
			want:    OK,
		},
		{
			name:    "active but expired",
			vehicle: &store.Vehicle{Status: "active", ValidTo: strp("2026-05-31")},
			want:    Expired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate("PLATE", tt.vehicle, today)
			assert.Equal(t, tt.want, got.Verdict)
			assert.Equal(t, tt.want.Message(), got.Message)
		})
	}
}

func TestEvaluate_EchoesRecord(t *testing.T) {
	demo := store.DemoVehicles("COMMON")[0]

	got := Evaluate("12가3456", &demo, "2026-06-01")
	assert.Equal(t, OK, got.Verdict)
	assert.Equal(t, "정상 등록", got.Message)
	require.NotNil(t, got.Unit)
	assert.Equal(t, "101-1203", *got.Unit)
	require.NotNil(t, got.OwnerName)
	assert.Equal(t, "홍길동", *got.OwnerName)
	require.NotNil(t, got.Status)
	assert.Equal(t, "active", *got.Status)
	require.NotNil(t, got.ValidTo)
	assert.Equal(t, "2027-12-31", *got.ValidTo)

	missing := Evaluate("99외9999", nil, "2026-06-01")
	assert.Equal(t, Unregistered, missing.Verdict)
	assert.Equal(t, "미등록 차량", missing.Message)
	assert.Nil(t, missing.Unit)
	assert.Nil(t, missing.OwnerName)
	assert.Nil(t, missing.Status)
}

func TestParse(t *testing.T) {
	v, err := Parse(" expired ")
	require.NoError(t, err)
	assert.Equal(t, Expired, v)

	_, err = Parse("MAYBE")
	require.Error(t, err)
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "12가3456", NormalizePlate(" 12가3456 "))
	assert.Equal(t, "AB12", NormalizePlate("ab12"))
}

func TestToday(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 5, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-05-31", Today(now, time.UTC))
	assert.Equal(t, "2026-06-01", Today(now, seoul))
}
