package models

import "gorm.io/gorm"

// Role controls what a member may administer.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Member represents a registered forum member.
type Member struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Email    string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Nickname string `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	Role     string `gorm:"size:20;not null;default:USER" json:"role"`
}
