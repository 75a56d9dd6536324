package models

import "gorm.io/gorm"

// Notification types.
const (
	NotificationComment = "COMMENT"
	NotificationReply   = "REPLY"
	NotificationUpvote  = "UPVOTE"
)

// Notification is a message shown to a member about activity on their content.
type Notification struct {
	gorm.Model
	RecipientID uint   `gorm:"index;not null" json:"recipient_id"`
	Type        string `gorm:"size:20;not null" json:"type"`
	TargetID    uint   `gorm:"not null" json:"target_id"`
	Message     string `gorm:"size:500;not null" json:"message"`
	Read        bool   `gorm:"not null;default:false" json:"read"`
}
