package repositories

import (
	"context"

	"github.com/curio-learn/profile-service/internal/models"
)

// UserProfileRepository persists UserProfile rows
type UserProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id uint) (*models.UserProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
	// Update writes every column, nulls included.
	Update(ctx context.Context, profile *models.UserProfile) error
	Delete(ctx context.Context, id uint) error

	ChangeList(ctx context.Context, query ChangeListQuery) ([]*models.UserProfile, int64, error)
	FilterChoices(ctx context.Context, field string) ([]FilterChoice, error)
}

// StudentDataRepository persists StudentData rows
type StudentDataRepository interface {
	Create(ctx context.Context, data *models.StudentData) error
	GetByID(ctx context.Context, id uint) (*models.StudentData, error)
	GetByUserID(ctx context.Context, userID uint) (*models.StudentData, error)
	// Update writes every column, nulls included.
	Update(ctx context.Context, data *models.StudentData) error
	Delete(ctx context.Context, id uint) error

	ChangeList(ctx context.Context, query ChangeListQuery) ([]*models.StudentData, int64, error)
	FilterChoices(ctx context.Context, field string) ([]FilterChoice, error)
}

// AdminLogRepository persists the admin audit trail
type AdminLogRepository interface {
	Create(ctx context.Context, entry *models.AdminLogEntry) error
	List(ctx context.Context, filters AdminLogFilters) ([]*models.AdminLogEntry, int64, error)
}
