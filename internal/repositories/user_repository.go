package repositories

import (
	"context"

	"github.com/curio-learn/profile-service/internal/models"
)

// UserFilters defines filters for account queries
type UserFilters struct {
	Query  string // Search query for username or email
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// UserRepository persists the accounts that own learner records
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the account; dependent records go with it through ON DELETE CASCADE.
	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
