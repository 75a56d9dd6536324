package models

import "gorm.io/gorm"

// Tag is a normalized lowercase label attachable to posts.
type Tag struct {
	gorm.Model
	Name       string `gorm:"uniqueIndex;size:60;not null" json:"name"`
	UsageCount int64  `gorm:"not null;default:0" json:"usage_count"`
}

// PostTag links a post to a tag. It deletes hard, not soft, so a removed tag
// can be re-added without tripping the unique index.
type PostTag struct {
	ID     uint `gorm:"primarykey" json:"id"`
	PostID uint `gorm:"uniqueIndex:idx_post_tag;not null" json:"post_id"`
	TagID  uint `gorm:"uniqueIndex:idx_post_tag;not null" json:"tag_id"`
	Tag    Tag  `gorm:"foreignKey:TagID" json:"tag"`
}
