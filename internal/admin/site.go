package admin

import (
	"errors"
	"fmt"

	"github.com/curio-learn/profile-service/internal/models"
)

var (
	ErrModelNotRegistered = errors.New("model not registered")
	ErrAlreadyRegistered  = errors.New("model already registered")
)

// DefaultListPerPage and MaxListPerPage bound changelist pages
const (
	DefaultListPerPage = 100
	MaxListPerPage     = 500
)

// ModelAdmin declares how one model is listed, filtered and searched.
type ModelAdmin struct {
	Name         string   `json:"name"`
	VerboseName  string   `json:"verbose_name"`
	ListDisplay  []string `json:"list_display"`
	ListFilter   []string `json:"list_filter"`
	SearchFields []string `json:"search_fields"`
	Ordering     []string `json:"ordering"`
	ListPerPage  int      `json:"list_per_page"`
}

func (m *ModelAdmin) displays(field string) bool {
	return contains(m.ListDisplay, field)
}

func (m *ModelAdmin) filters(field string) bool {
	return contains(m.ListFilter, field)
}

// Site is the registry of administered models
type Site struct {
	models map[string]*ModelAdmin
	order  []string
}

func NewSite() *Site {
	return &Site{models: make(map[string]*ModelAdmin)}
}

// Register adds m under m.Name. ListPerPage falls back to the default.
func (s *Site) Register(m *ModelAdmin) error {
	if _, ok := s.models[m.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, m.Name)
	}
	if m.ListPerPage <= 0 {
		m.ListPerPage = DefaultListPerPage
	}
	s.models[m.Name] = m
	s.order = append(s.order, m.Name)
	return nil
}

func (s *Site) Get(name string) (*ModelAdmin, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotRegistered, name)
	}
	return m, nil
}

// Models returns the registrations in registration order
func (s *Site) Models() []*ModelAdmin {
	out := make([]*ModelAdmin, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.models[name])
	}
	return out
}

// UserProfileAdmin lists profiles by id with every field shown.
func UserProfileAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:        models.ContentTypeUserProfile,
		VerboseName: "User profiles",
		ListDisplay: []string{
			"user", "completed_modules", "content_library", "skill_level",
			"quiz_history", "streak_days", "total_points", "target_completion_date",
		},
		Ordering: []string{"id"},
	}
}

// StudentDataAdmin lists onboarding data, searchable by owner username.
func StudentDataAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:        models.ContentTypeStudentData,
		VerboseName: "Student data",
		ListDisplay: []string{
			"user", "age", "grade", "education_background",
			"difficulty_preference", "feedback_preference", "current_skill_level",
			"study_environment", "learning_challenges", "learning_style",
			"motivation", "study_time", "primary_goal", "short_term_goal",
			"long_term_goal", "study_days", "subjects", "target_completion_date",
		},
		ListFilter:   []string{"user", "age", "subjects", "grade"},
		SearchFields: []string{"user__username"},
		Ordering:     []string{"user", "age"},
	}
}

// DefaultSite registers both learner record types.
func DefaultSite() *Site {
	site := NewSite()
	_ = site.Register(UserProfileAdmin())
	_ = site.Register(StudentDataAdmin())
	return site
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
