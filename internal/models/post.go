package models

import "gorm.io/gorm"

// Post represents a forum post.
type Post struct {
	gorm.Model
	AuthorID  uint   `gorm:"index;not null" json:"author_id"`
	Author    Member `gorm:"foreignKey:AuthorID" json:"author"`
	BoardID   uint   `gorm:"index;not null" json:"board_id"`
	Board     Board  `gorm:"foreignKey:BoardID" json:"board"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	ViewCount int64  `gorm:"not null;default:0" json:"view_count"`
}
