package models

import "gorm.io/gorm"

// Vote target types.
const (
	VoteTargetPost    = "POST"
	VoteTargetComment = "COMMENT"
)

// Vote represents a member's up (+1) or down (-1) vote on a post or comment.
// A member has at most one vote per target.
type Vote struct {
	gorm.Model
	MemberID   uint   `gorm:"uniqueIndex:idx_vote_member_target;not null" json:"member_id"`
	TargetID   uint   `gorm:"uniqueIndex:idx_vote_member_target;not null" json:"target_id"`
	TargetType string `gorm:"uniqueIndex:idx_vote_member_target;size:20;not null" json:"target_type"`
	Value      int    `gorm:"not null" json:"value"`
}
