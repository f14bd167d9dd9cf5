package postgres

import (
	"gorm.io/gorm"

	"github.com/curio-learn/profile-service/internal/models"
)

// Migrate creates or updates the schema. Foreign keys to auth_user carry
// ON DELETE CASCADE so dependent records go with their account.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.StudentData{},
		&models.AdminLogEntry{},
	)
}
