package models

import (
	"fmt"

	"gorm.io/datatypes"
)

// StudentData holds the learning preferences captured during onboarding.
// One per account.
type StudentData struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"user" gorm:"column:user_id;not null;uniqueIndex"`
	User   *User `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID;references:ID"`

	Age *int `json:"age" gorm:"type:integer"`

	// Background
	Grade               *string `json:"grade" gorm:"size:100"`
	EducationBackground *string `json:"education_background" gorm:"size:100"`

	// Learning preferences
	DifficultyPreference *string `json:"difficulty_preference" gorm:"size:100"`
	FeedbackPreference   *string `json:"feedback_preference" gorm:"size:100"`
	CurrentSkillLevel    *string `json:"current_skill_level" gorm:"size:100"`
	StudyEnvironment     *string `json:"study_environment" gorm:"size:100"`
	LearningChallenges   *string `json:"learning_challenges" gorm:"size:100"`
	LearningStyle        *string `json:"learning_style" gorm:"size:100"`
	Motivation           *string `json:"motivation" gorm:"size:100"`
	StudyTime            *string `json:"study_time" gorm:"size:100"`

	// Goals
	PrimaryGoal   *string `json:"primary_goal" gorm:"size:100"`
	ShortTermGoal *string `json:"short_term_goal" gorm:"size:100"`
	LongTermGoal  *string `json:"long_term_goal" gorm:"size:100"`

	// Schedule
	StudyDays *string `json:"study_days" gorm:"size:100"`
	Subjects  *string `json:"subjects" gorm:"size:100"`

	TargetCompletionDate *datatypes.Date `json:"target_completion_date" gorm:"type:date"`
}

func (StudentData) TableName() string {
	return "curio_studentdata"
}

func (s *StudentData) String() string {
	if s.User != nil {
		return fmt.Sprintf("StudentData object (%d) for %s", s.ID, s.User.Username)
	}
	return fmt.Sprintf("StudentData object (%d)", s.ID)
}

func (s *StudentData) RecordID() uint   { return s.ID }
func (s *StudentData) OwnerID() uint    { return s.UserID }
func (s *StudentData) Owner() *User     { return s.User }
func (s *StudentData) SetOwner(u *User) { s.User = u }
