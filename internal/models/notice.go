package models

import (
	"time"

	"gorm.io/gorm"
)

// Notice is an operator announcement shown on the site. A notice becomes
// visible once its publication time has passed; higher priority sorts first.
type Notice struct {
	gorm.Model
	Title       string    `gorm:"size:120;not null" json:"title"`
	Content     string    `gorm:"size:1000;not null" json:"content"`
	Priority    int       `gorm:"not null" json:"priority"`
	PublishedAt time.Time `gorm:"index;not null" json:"published_at"`
	TargetURL   string    `json:"target_url,omitempty"`
}

// Active reports whether the notice is published at the reference time.
func (n Notice) Active(ref time.Time) bool {
	return !n.PublishedAt.After(ref)
}
