package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

var userProfileColumns = newRecordColumns(
	models.UserProfile{}.TableName(),
	[]string{"completed_modules", "content_library", "skill_level", "quiz_history"},
	[]string{"streak_days", "total_points"},
	[]string{"target_completion_date"},
)

type userProfilePostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewUserProfilePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserProfileRepository {
	return &userProfilePostgreSQL{db: db, cache: cacheManager.Profile}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userProfilePostgreSQL) Create(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return handleDBError(err, "create user profile")
	}
	cache.SafeDelete(ctx, r.cache, cache.OwnerKey(profile.UserID))
	return nil
}

func (r *userProfilePostgreSQL) GetByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.cache.CacheOrExecute(ctx, cache.IDKey(id), &profile, func() (interface{}, error) {
		var p models.UserProfile
		if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
			return nil, handleDBError(err, "get user profile by id")
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userProfilePostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.cache.CacheOrExecute(ctx, cache.OwnerKey(userID), &profile, func() (interface{}, error) {
		var p models.UserProfile
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
			return nil, handleDBError(err, "get user profile by user")
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userProfilePostgreSQL) Update(ctx context.Context, profile *models.UserProfile) error {
	var current models.UserProfile
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&current, profile.ID).Error; err != nil {
		return handleDBError(err, "get user profile for update")
	}

	result := r.db.WithContext(ctx).
		Model(&models.UserProfile{ID: profile.ID}).
		Select("*").
		Omit(clause.Associations).
		Updates(profile)
	if result.Error != nil {
		return handleDBError(result.Error, "update user profile")
	}

	cache.InvalidateRecordCache(ctx, r.cache, current.ID, current.UserID)
	cache.SafeDelete(ctx, r.cache, cache.OwnerKey(profile.UserID))
	return nil
}

func (r *userProfilePostgreSQL) Delete(ctx context.Context, id uint) error {
	var current models.UserProfile
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&current, id).Error; err != nil {
		return handleDBError(err, "get user profile for delete")
	}

	if err := r.db.WithContext(ctx).Delete(&models.UserProfile{}, id).Error; err != nil {
		return handleDBError(err, "delete user profile")
	}

	cache.InvalidateRecordCache(ctx, r.cache, current.ID, current.UserID)
	return nil
}

// ===== ADMIN QUERIES =====

func (r *userProfilePostgreSQL) ChangeList(ctx context.Context, query repositories.ChangeListQuery) ([]*models.UserProfile, int64, error) {
	var profiles []*models.UserProfile
	total, err := changeList(ctx, r.db, &models.UserProfile{}, userProfileColumns, query, &profiles)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *userProfilePostgreSQL) FilterChoices(ctx context.Context, field string) ([]repositories.FilterChoice, error) {
	return filterChoices(ctx, r.db, userProfileColumns, field)
}
