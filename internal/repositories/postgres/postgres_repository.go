package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user        repositories.UserRepository
	userProfile repositories.UserProfileRepository
	studentData repositories.StudentDataRepository
	adminLog    repositories.AdminLogRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client // optional
	CacheTTL    time.Duration

	// CacheManager is shared with other consumers when set; otherwise one
	// is built from RedisClient and CacheTTL.
	CacheManager *cache.CacheManager
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := config.CacheManager
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(config.RedisClient, config.CacheTTL)
	}
	return newRepository(config.DB, config.RedisClient, cacheManager)
}

func newRepository(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cacheManager,
		user:         NewUserPostgreSQL(db, cacheManager),
		userProfile:  NewUserProfilePostgreSQL(db, cacheManager),
		studentData:  NewStudentDataPostgreSQL(db, cacheManager),
		adminLog:     NewAdminLogPostgreSQL(db),
	}
}

// User returns the account repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// UserProfile returns the user profile repository
func (r *PostgreSQLRepository) UserProfile() repositories.UserProfileRepository {
	return r.userProfile
}

// StudentData returns the student data repository
func (r *PostgreSQLRepository) StudentData() repositories.StudentDataRepository {
	return r.studentData
}

// AdminLog returns the admin log repository
func (r *PostgreSQLRepository) AdminLog() repositories.AdminLogRepository {
	return r.adminLog
}

// WithTransaction executes a function within a database transaction. The
// repository handed to fn reads around the cache, and the cache entries it
// invalidates are dropped only after commit.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	txCache := r.cacheManager.Deferred()
	nested := txCache == r.cacheManager

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.redisClient, txCache))
	})
	if nested {
		// The outermost transaction flushes
		return err
	}
	if err != nil {
		txCache.Discard()
		return err
	}

	if err := txCache.Flush(context.WithoutCancel(ctx)); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache after commit", "error", err)
	}
	return nil
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize checks connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
