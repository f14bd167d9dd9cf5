package serializers

import (
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/validator"
)

// UserProfileFields lists the serialized fields in declaration order.
var UserProfileFields = []string{
	"id", "user",
	"completed_modules", "content_library", "skill_level", "quiz_history",
	"streak_days", "total_points", "target_completion_date",
}

// UserProfileRepresentation is the flat JSON form of a UserProfile.
type UserProfileRepresentation struct {
	ID   uint `json:"id"`
	User uint `json:"user" validate:"required"`

	CompletedModules *string `json:"completed_modules" validate:"omitempty,max=100"`
	ContentLibrary   *string `json:"content_library" validate:"omitempty,max=100"`
	SkillLevel       *string `json:"skill_level" validate:"omitempty,max=100"`
	QuizHistory      *string `json:"quiz_history" validate:"omitempty,max=100"`

	StreakDays  *int `json:"streak_days" validate:"omitempty,min=-2147483648,max=2147483647"`
	TotalPoints *int `json:"total_points" validate:"omitempty,min=-2147483648,max=2147483647"`

	TargetCompletionDate *string `json:"target_completion_date" validate:"omitempty,calendar_date"`
}

type UserProfileSerializer struct {
	validator *validator.Validator
}

func NewUserProfileSerializer(v *validator.Validator) *UserProfileSerializer {
	return &UserProfileSerializer{validator: v}
}

func (s *UserProfileSerializer) ToRepresentation(p *models.UserProfile) *UserProfileRepresentation {
	return &UserProfileRepresentation{
		ID:                   p.ID,
		User:                 p.UserID,
		CompletedModules:     p.CompletedModules,
		ContentLibrary:       p.ContentLibrary,
		SkillLevel:           p.SkillLevel,
		QuizHistory:          p.QuizHistory,
		StreakDays:           p.StreakDays,
		TotalPoints:          p.TotalPoints,
		TargetCompletionDate: formatDate(p.TargetCompletionDate),
	}
}

// ToInternal validates rep and maps it back to a model. Every field is
// taken from rep; absent fields become null.
func (s *UserProfileSerializer) ToInternal(rep *UserProfileRepresentation) (*models.UserProfile, error) {
	if err := s.validator.Validate(rep); err != nil {
		return nil, err
	}

	return &models.UserProfile{
		ID:                   rep.ID,
		UserID:               rep.User,
		CompletedModules:     rep.CompletedModules,
		ContentLibrary:       rep.ContentLibrary,
		SkillLevel:           rep.SkillLevel,
		QuizHistory:          rep.QuizHistory,
		StreakDays:           rep.StreakDays,
		TotalPoints:          rep.TotalPoints,
		TargetCompletionDate: parseDate(rep.TargetCompletionDate),
	}, nil
}

// Decode parses a JSON body into a representation.
func (s *UserProfileSerializer) Decode(data []byte) (*UserProfileRepresentation, error) {
	var rep UserProfileRepresentation
	if err := decode(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
