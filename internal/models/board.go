package models

import "gorm.io/gorm"

// Board represents a forum board posts are filed under.
type Board struct {
	gorm.Model
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Slug        string `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Type        string `gorm:"size:30;not null;default:GENERAL" json:"type"`
}
