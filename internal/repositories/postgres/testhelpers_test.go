package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func newTestRepository(t *testing.T) repositories.Repository {
	t.Helper()
	return NewPostgreSQLRepository(RepositoryConfig{DB: newTestDB(t)})
}

func createUser(t *testing.T, repo repositories.Repository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", IsActive: true}
	require.NoError(t, repo.User().Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func datePtr(t *testing.T, s string) *datatypes.Date {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	d := datatypes.Date(parsed)
	return &d
}
