package serializers

import (
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/validator"
)

var StudentDataFields = []string{
	"id", "user", "age",
	"grade", "education_background",
	"difficulty_preference", "feedback_preference", "current_skill_level",
	"study_environment", "learning_challenges", "learning_style",
	"motivation", "study_time",
	"primary_goal", "short_term_goal", "long_term_goal",
	"study_days", "subjects", "target_completion_date",
}

// StudentDataRepresentation is the flat JSON form of a StudentData.
type StudentDataRepresentation struct {
	ID   uint `json:"id"`
	User uint `json:"user" validate:"required"`
	Age  *int `json:"age" validate:"omitempty,min=-2147483648,max=2147483647"`

	Grade                *string `json:"grade" validate:"omitempty,max=100"`
	EducationBackground  *string `json:"education_background" validate:"omitempty,max=100"`
	DifficultyPreference *string `json:"difficulty_preference" validate:"omitempty,max=100"`
	FeedbackPreference   *string `json:"feedback_preference" validate:"omitempty,max=100"`
	CurrentSkillLevel    *string `json:"current_skill_level" validate:"omitempty,max=100"`
	StudyEnvironment     *string `json:"study_environment" validate:"omitempty,max=100"`
	LearningChallenges   *string `json:"learning_challenges" validate:"omitempty,max=100"`
	LearningStyle        *string `json:"learning_style" validate:"omitempty,max=100"`
	Motivation           *string `json:"motivation" validate:"omitempty,max=100"`
	StudyTime            *string `json:"study_time" validate:"omitempty,max=100"`
	PrimaryGoal          *string `json:"primary_goal" validate:"omitempty,max=100"`
	ShortTermGoal        *string `json:"short_term_goal" validate:"omitempty,max=100"`
	LongTermGoal         *string `json:"long_term_goal" validate:"omitempty,max=100"`
	StudyDays            *string `json:"study_days" validate:"omitempty,max=100"`
	Subjects             *string `json:"subjects" validate:"omitempty,max=100"`

	TargetCompletionDate *string `json:"target_completion_date" validate:"omitempty,calendar_date"`
}

type StudentDataSerializer struct {
	validator *validator.Validator
}

func NewStudentDataSerializer(v *validator.Validator) *StudentDataSerializer {
	return &StudentDataSerializer{validator: v}
}

func (s *StudentDataSerializer) ToRepresentation(d *models.StudentData) *StudentDataRepresentation {
	return &StudentDataRepresentation{
		ID:                   d.ID,
		User:                 d.UserID,
		Age:                  d.Age,
		Grade:                d.Grade,
		EducationBackground:  d.EducationBackground,
		DifficultyPreference: d.DifficultyPreference,
		FeedbackPreference:   d.FeedbackPreference,
		CurrentSkillLevel:    d.CurrentSkillLevel,
		StudyEnvironment:     d.StudyEnvironment,
		LearningChallenges:   d.LearningChallenges,
		LearningStyle:        d.LearningStyle,
		Motivation:           d.Motivation,
		StudyTime:            d.StudyTime,
		PrimaryGoal:          d.PrimaryGoal,
		ShortTermGoal:        d.ShortTermGoal,
		LongTermGoal:         d.LongTermGoal,
		StudyDays:            d.StudyDays,
		Subjects:             d.Subjects,
		TargetCompletionDate: formatDate(d.TargetCompletionDate),
	}
}

func (s *StudentDataSerializer) ToInternal(rep *StudentDataRepresentation) (*models.StudentData, error) {
	if err := s.validator.Validate(rep); err != nil {
		return nil, err
	}

	return &models.StudentData{
		ID:                   rep.ID,
		UserID:               rep.User,
		Age:                  rep.Age,
		Grade:                rep.Grade,
		EducationBackground:  rep.EducationBackground,
		DifficultyPreference: rep.DifficultyPreference,
		FeedbackPreference:   rep.FeedbackPreference,
		CurrentSkillLevel:    rep.CurrentSkillLevel,
		StudyEnvironment:     rep.StudyEnvironment,
		LearningChallenges:   rep.LearningChallenges,
		LearningStyle:        rep.LearningStyle,
		Motivation:           rep.Motivation,
		StudyTime:            rep.StudyTime,
		PrimaryGoal:          rep.PrimaryGoal,
		ShortTermGoal:        rep.ShortTermGoal,
		LongTermGoal:         rep.LongTermGoal,
		StudyDays:            rep.StudyDays,
		Subjects:             rep.Subjects,
		TargetCompletionDate: parseDate(rep.TargetCompletionDate),
	}, nil
}

func (s *StudentDataSerializer) Decode(data []byte) (*StudentDataRepresentation, error) {
	var rep StudentDataRepresentation
	if err := decode(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
