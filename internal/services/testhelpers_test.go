package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/repositories/postgres"
	"github.com/curio-learn/profile-service/internal/validator"
)

type testEnv struct {
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	services  ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRedis(t, nil)
}

// newCachedTestEnv backs the services with miniredis. SET commands are
// slowed down by setDelay to surface write-back ordering.
func newCachedTestEnv(t *testing.T, setDelay time.Duration) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client.AddHook(slowSetHook{delay: setDelay})
	t.Cleanup(func() { _ = client.Close() })
	return newTestEnvWithRedis(t, client), mr
}

type slowSetHook struct {
	delay time.Duration
}

func (h slowSetHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h slowSetHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if strings.EqualFold(cmd.Name(), "set") {
			time.Sleep(h.delay)
		}
		return next(ctx, cmd)
	}
}

func (h slowSetHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newTestEnvWithRedis(t *testing.T, client *redis.Client) *testEnv {
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
	require.NoError(t, postgres.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cacheManager := cache.NewCacheManager(client, time.Minute)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, CacheManager: cacheManager})
	publisher := events.NewMockEventPublisher(log)

	sm := NewDefaultServiceManager(repo, log, validator.New(), publisher, cacheManager)
	require.NoError(t, sm.Initialize(context.Background()))

	return &testEnv{repo: repo, publisher: publisher, services: sm}
}

func (e *testEnv) createUser(t *testing.T, username string, staff bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", IsStaff: staff, IsActive: true}
	require.NoError(t, e.repo.User().Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
