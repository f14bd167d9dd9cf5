package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User is the local account that owns learner records. Rows in
// curio_userprofile and curio_studentdata are removed with it.
type User struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Username   string  `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email      string  `json:"email" gorm:"size:254"`
	ExternalID *string `json:"external_id,omitempty" gorm:"uniqueIndex;size:255"`

	// Status
	IsStaff  bool `json:"is_staff" gorm:"default:false"`
	IsActive bool `json:"is_active" gorm:"default:true"`

	DateJoined time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "auth_user"
}

// Role reports the coarse role used by route guards.
func (u *User) Role() UserRole {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleStudent
}

func (u *User) String() string {
	return u.Username
}
