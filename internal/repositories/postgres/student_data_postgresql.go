package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

var studentDataColumns = newRecordColumns(
	models.StudentData{}.TableName(),
	[]string{
		"grade", "education_background",
		"difficulty_preference", "feedback_preference", "current_skill_level",
		"study_environment", "learning_challenges", "learning_style",
		"motivation", "study_time",
		"primary_goal", "short_term_goal", "long_term_goal",
		"study_days", "subjects",
	},
	[]string{"age"},
	[]string{"target_completion_date"},
)

type studentDataPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewStudentDataPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.StudentDataRepository {
	return &studentDataPostgreSQL{db: db, cache: cacheManager.Student}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *studentDataPostgreSQL) Create(ctx context.Context, data *models.StudentData) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(data).Error; err != nil {
		return handleDBError(err, "create student data")
	}
	cache.SafeDelete(ctx, r.cache, cache.OwnerKey(data.UserID))
	return nil
}

func (r *studentDataPostgreSQL) GetByID(ctx context.Context, id uint) (*models.StudentData, error) {
	var data models.StudentData
	err := r.cache.CacheOrExecute(ctx, cache.IDKey(id), &data, func() (interface{}, error) {
		var d models.StudentData
		if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
			return nil, handleDBError(err, "get student data by id")
		}
		return &d, nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (r *studentDataPostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.StudentData, error) {
	var data models.StudentData
	err := r.cache.CacheOrExecute(ctx, cache.OwnerKey(userID), &data, func() (interface{}, error) {
		var d models.StudentData
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
			return nil, handleDBError(err, "get student data by user")
		}
		return &d, nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (r *studentDataPostgreSQL) Update(ctx context.Context, data *models.StudentData) error {
	var current models.StudentData
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&current, data.ID).Error; err != nil {
		return handleDBError(err, "get student data for update")
	}

	result := r.db.WithContext(ctx).
		Model(&models.StudentData{ID: data.ID}).
		Select("*").
		Omit(clause.Associations).
		Updates(data)
	if result.Error != nil {
		return handleDBError(result.Error, "update student data")
	}

	cache.InvalidateRecordCache(ctx, r.cache, current.ID, current.UserID)
	cache.SafeDelete(ctx, r.cache, cache.OwnerKey(data.UserID))
	return nil
}

func (r *studentDataPostgreSQL) Delete(ctx context.Context, id uint) error {
	var current models.StudentData
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&current, id).Error; err != nil {
		return handleDBError(err, "get student data for delete")
	}

	if err := r.db.WithContext(ctx).Delete(&models.StudentData{}, id).Error; err != nil {
		return handleDBError(err, "delete student data")
	}

	cache.InvalidateRecordCache(ctx, r.cache, current.ID, current.UserID)
	return nil
}

// ===== ADMIN QUERIES =====

func (r *studentDataPostgreSQL) ChangeList(ctx context.Context, query repositories.ChangeListQuery) ([]*models.StudentData, int64, error) {
	var records []*models.StudentData
	total, err := changeList(ctx, r.db, &models.StudentData{}, studentDataColumns, query, &records)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *studentDataPostgreSQL) FilterChoices(ctx context.Context, field string) ([]repositories.FilterChoice, error) {
	return filterChoices(ctx, r.db, studentDataColumns, field)
}
