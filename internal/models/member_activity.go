package models

import "gorm.io/gorm"

// Activity level bounds.
const (
	MaxLevel           = 10
	ExperiencePerLevel = 100
)

// MemberActivity tracks a member's accumulated forum activity and level.
type MemberActivity struct {
	gorm.Model
	MemberID         uint  `gorm:"uniqueIndex;not null" json:"member_id"`
	Level            int   `gorm:"not null;default:1" json:"level"`
	ExperiencePoints int64 `gorm:"not null;default:0" json:"experience_points"`
	TotalPosts       int64 `gorm:"not null;default:0" json:"total_posts"`
	TotalComments    int64 `gorm:"not null;default:0" json:"total_comments"`
	TotalUpvotes     int64 `gorm:"not null;default:0" json:"total_upvotes"`
	TotalDownvotes   int64 `gorm:"not null;default:0" json:"total_downvotes"`
}

// AddExperience adds points and recomputes the level: one level per 100
// experience points, capped at level 10.
func (a *MemberActivity) AddExperience(points int64) {
	a.ExperiencePoints += points
	level := int(a.ExperiencePoints/ExperiencePerLevel) + 1
	if level > MaxLevel {
		level = MaxLevel
	}
	a.Level = level
}

// LevelTier buckets the level for display.
func (a *MemberActivity) LevelTier() string {
	switch {
	case a.Level <= 3:
		return "BRONZE"
	case a.Level <= 6:
		return "SILVER"
	case a.Level <= 9:
		return "GOLD"
	default:
		return "DIAMOND"
	}
}

// ExperienceToNextLevel returns the points still needed to level up, or 0 at
// the level cap.
func (a *MemberActivity) ExperienceToNextLevel() int64 {
	if a.Level >= MaxLevel {
		return 0
	}
	return int64(a.Level)*ExperiencePerLevel - a.ExperiencePoints
}
