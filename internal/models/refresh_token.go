package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is a persisted refresh token issued at login and rotated on use.
type RefreshToken struct {
	gorm.Model
	MemberID  uint      `gorm:"index;not null" json:"member_id"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the token is past its expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
