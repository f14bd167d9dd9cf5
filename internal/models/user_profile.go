package models

import (
	"fmt"

	"gorm.io/datatypes"
)

// UserProfile tracks a learner's progress. One per account.
type UserProfile struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"user" gorm:"column:user_id;not null;uniqueIndex"`
	User   *User `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID;references:ID"`

	CompletedModules *string `json:"completed_modules" gorm:"size:100"`
	ContentLibrary   *string `json:"content_library" gorm:"size:100"`
	SkillLevel       *string `json:"skill_level" gorm:"size:100"`
	QuizHistory      *string `json:"quiz_history" gorm:"size:100"`

	StreakDays  *int `json:"streak_days" gorm:"type:integer"`
	TotalPoints *int `json:"total_points" gorm:"type:integer"`

	TargetCompletionDate *datatypes.Date `json:"target_completion_date" gorm:"type:date"`
}

func (UserProfile) TableName() string {
	return "curio_userprofile"
}

func (p *UserProfile) String() string {
	username := ""
	if p.User != nil {
		username = p.User.Username
	}
	return fmt.Sprintf("Tokens for %s", username)
}

func (p *UserProfile) RecordID() uint   { return p.ID }
func (p *UserProfile) OwnerID() uint    { return p.UserID }
func (p *UserProfile) Owner() *User     { return p.User }
func (p *UserProfile) SetOwner(u *User) { p.User = u }
