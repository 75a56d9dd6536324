package models

import "gorm.io/gorm"

// Bookmark marks a post a member saved for later.
type Bookmark struct {
	gorm.Model
	MemberID uint `gorm:"uniqueIndex:idx_bookmark_member_post;not null" json:"member_id"`
	PostID   uint `gorm:"uniqueIndex:idx_bookmark_member_post;not null" json:"post_id"`
	Post     Post `gorm:"foreignKey:PostID" json:"post"`
}
