// Package verdict evaluates a vehicle registration against the
// enforcement policy.
package verdict

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/parkoor/pkg/store"
)

// Verdict is the outcome of a plate check.
type Verdict string

const (
	OK           Verdict = "OK"
	Unregistered Verdict = "UNREGISTERED"
	Blocked      Verdict = "BLOCKED"
	Expired      Verdict = "EXPIRED"
	Temp         Verdict = "TEMP"
)

var messages = map[Verdict]string{
	OK:           "정상 등록",
	Unregistered: "미등록 차량",
	Blocked:      "차단 차량",
	Expired:      "기간 만료",
	Temp:         "임시 등록",
}

// Message returns the fixed human-readable message for v.
func (v Verdict) Message() string {
	return messages[v]
}

// Parse validates a verdict name, ignoring surrounding space and case.
func Parse(s string) (Verdict, error) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := messages[v]; !ok {
		return "", fmt.Errorf("unknown verdict %q", s)
	}

	return v, nil
}

// Result is a verdict plus the registration it was derived from. The
// registration fields are nil for Unregistered.
type Result struct {
	Plate     string  `json:"plate"`
	Verdict   Verdict `json:"verdict"`
	Message   string  `json:"message"`
	Unit      *string `json:"unit"`
	OwnerName *string `json:"owner_name"`
	Status    *string `json:"status"`
	ValidFrom *string `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
}

// NormalizePlate trims and upper-cases a plate for lookup.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Today returns the ISO-8601 date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(time.DateOnly)
}

// Evaluate applies the policy to vehicle, which is nil when the plate has
// no registration in the site. The first matching rule wins: unregistered,
// blocked, expired, temp, then ok. today and ValidTo compare as ISO-8601
// strings.
func Evaluate(plate string, vehicle *store.Vehicle, today string) Result {
	if vehicle == nil {
		return Result{Plate: plate, Verdict: Unregistered, Message: Unregistered.Message()}
	}

	status := strings.ToLower(strings.TrimSpace(vehicle.Status))
	if status == "" {
		status = "active"
	}

	var v Verdict

	switch {
	case status == "blocked":
		v = Blocked
	case vehicle.ValidTo != nil && *vehicle.ValidTo != "" && today > *vehicle.ValidTo:
		v = Expired
	case status == "temp":
		v = Temp
	default:
		v = OK
	}

	unit, owner := vehicle.Unit, vehicle.OwnerName

	return Result{
		Plate:     plate,
		Verdict:   v,
		Message:   v.Message(),
		Unit:      &unit,
		OwnerName: &owner,
		Status:    &status,
		ValidFrom: vehicle.ValidFrom,
		ValidTo:   vehicle.ValidTo,
	}
}
