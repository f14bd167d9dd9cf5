package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

type adminLogPostgreSQL struct {
	db *gorm.DB
}

func NewAdminLogPostgreSQL(db *gorm.DB) repositories.AdminLogRepository {
	return &adminLogPostgreSQL{db: db}
}

func (r *adminLogPostgreSQL) Create(ctx context.Context, entry *models.AdminLogEntry) error {
	if err := r.db.WithContext(ctx).Omit("Actor").Create(entry).Error; err != nil {
		return handleDBError(err, "create admin log entry")
	}
	return nil
}

// List returns entries newest first.
func (r *adminLogPostgreSQL) List(ctx context.Context, filters repositories.AdminLogFilters) ([]*models.AdminLogEntry, int64, error) {
	var entries []*models.AdminLogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AdminLogEntry{})
	if filters.ContentType != "" {
		query = query.Where("content_type = ?", filters.ContentType)
	}
	if filters.ObjectID != nil {
		query = query.Where("object_id = ?", *filters.ObjectID)
	}
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count admin log entries")
	}

	page := query.Preload("Actor").Order("action_time DESC").Order("id DESC")
	if filters.Limit > 0 {
		page = page.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		page = page.Offset(filters.Offset)
	}
	if err := page.Find(&entries).Error; err != nil {
		return nil, 0, handleDBError(err, "list admin log entries")
	}

	return entries, total, nil
}
