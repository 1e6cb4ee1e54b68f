package store

import (
	"time"
)

// User is an operator account. Only PasswordHash is mutable.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Vehicle is a registration record, keyed by (SiteCode, Plate). ValidFrom
// and ValidTo are ISO-8601 dates; nil means open-ended.
type Vehicle struct {
	SiteCode  string    `gorm:"primaryKey" json:"site_code"`
	Plate     string    `gorm:"primaryKey" json:"plate"`
	Unit      string    `json:"unit"`
	OwnerName string    `json:"owner_name"`
	Status    string    `gorm:"not null;default:active" json:"status"`
	ValidFrom *string   `json:"valid_from"`
	ValidTo   *string   `json:"valid_to"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// Violation is an append-only enforcement log entry.
type Violation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteCode  string    `gorm:"index;not null" json:"site_code"`
	Plate     string    `gorm:"index;not null" json:"plate"`
	Verdict   string    `gorm:"not null" json:"verdict"`
	RuleCode  *string   `json:"rule_code"`
	Location  *string   `json:"location"`
	Memo      *string   `json:"memo"`
	Inspector *string   `json:"inspector"`
	PhotoPath *string   `json:"photo_path"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
