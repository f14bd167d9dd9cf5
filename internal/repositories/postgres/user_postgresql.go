package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

type userPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &userPostgreSQL{db: db, cacheManager: cacheManager}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userPostgreSQL) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Select("username", "email", "external_id", "is_staff", "is_active").
		Updates(user)
	if result.Error != nil {
		return handleDBError(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user")
	}

	cache.SafeDelete(ctx, r.cacheManager.User, cache.IDKey(user.ID))
	return nil
}

func (r *userPostgreSQL) Delete(ctx context.Context, id uint) error {
	// Collect dependent ids first so their cached copies can be dropped
	// after the cascade removes the rows.
	var profileIDs, studentIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", id).Pluck("id", &profileIDs).Error; err != nil {
		return handleDBError(err, "list profiles of user")
	}
	if err := r.db.WithContext(ctx).Model(&models.StudentData{}).
		Where("user_id = ?", id).Pluck("id", &studentIDs).Error; err != nil {
		return handleDBError(err, "list student data of user")
	}

	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete user")
	}

	cache.InvalidateUserCache(ctx, r.cacheManager, id)
	for _, pid := range profileIDs {
		cache.SafeDelete(ctx, r.cacheManager.Profile, cache.IDKey(pid))
	}
	for _, sid := range studentIDs {
		cache.SafeDelete(ctx, r.cacheManager.Student, cache.IDKey(sid))
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *userPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.cacheManager.User.CacheOrExecute(ctx, cache.IDKey(id), &user, func() (interface{}, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
			return nil, handleDBError(err, "get user by id")
		}
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by username")
	}
	return &user, nil
}

func (r *userPostgreSQL) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by external id")
	}
	return &user, nil
}

func (r *userPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	page := query.Order("username ASC").Order("id ASC")
	if filters.Limit > 0 {
		page = page.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		page = page.Offset(filters.Offset)
	}
	if err := page.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userPostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}

func (r *userPostgreSQL) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check username exists")
	}
	return count > 0, nil
}
