package store

import "github.com/ethpandaops/parkoor/pkg/config"

// DemoVehicles returns the sample registrations used for local setups.
func DemoVehicles(siteCode string) []Vehicle {
	return []Vehicle{
		{
			SiteCode: siteCode, Plate: "12가3456", Unit: "101-1203", OwnerName: "홍길동",
			Status: "active", ValidFrom: ptr("2026-01-01"), ValidTo: ptr("2027-12-31"), Note: "상시등록",
		},
		{
			SiteCode: siteCode, Plate: "34나5678", Unit: "102-803", OwnerName: "김영희",
			Status: "blocked", Note: "차단차량",
		},
		{
			SiteCode: siteCode, Plate: "123다4567", Unit: "103-1502", OwnerName: "이철수",
			Status: "temp", ValidFrom: ptr("2026-02-01"), ValidTo: ptr("2026-02-28"), Note: "임시등록",
		},
	}
}

// DemoUsers returns one account per role for local setups.
func DemoUsers() []config.LocalUser {
	return []config.LocalUser{
		{Username: "admin", Password: "admin1234", Role: "admin"},
		{Username: "guard", Password: "guard1234", Role: "guard"},
		{Username: "viewer", Password: "viewer1234", Role: "viewer"},
	}
}

func ptr(s string) *string {
	return &s
}
