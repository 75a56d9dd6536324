package models

import "gorm.io/gorm"

// Comment represents a comment on a post. ParentID is nil for top-level
// comments and points at another comment of the same post for replies.
type Comment struct {
	gorm.Model
	AuthorID uint   `gorm:"index;not null" json:"author_id"`
	Author   Member `gorm:"foreignKey:AuthorID" json:"author"`
	PostID   uint   `gorm:"index;not null" json:"post_id"`
	Post     Post   `gorm:"foreignKey:PostID" json:"-"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`
}
