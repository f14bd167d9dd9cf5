package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// ProvisionProfiles creates an empty profile for every new account
	ProvisionProfiles bool
	DefaultTimeout    time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	publisher    events.EventPublisher
	cacheManager *cache.CacheManager
	site         *admin.Site
	config       ServiceManagerConfig

	// Service instances
	profileService     ProfileService
	studentDataService StudentDataService
	accountService     AccountService
	adminLogService    AdminLogService
	eventHandler       events.Handler

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cacheManager *cache.CacheManager, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:         repo,
		logger:       logger,
		validator:    validator,
		publisher:    publisher,
		cacheManager: cacheManager,
		site:         admin.DefaultSite(),
		config:       config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cacheManager *cache.CacheManager) ServiceManager {
	config := ServiceManagerConfig{
		ProvisionProfiles: true,
		DefaultTimeout:    30 * time.Second,
	}
	return NewServiceManager(repo, logger, validator, publisher, cacheManager, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	profileAdmin, err := sm.site.Get(models.ContentTypeUserProfile)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	studentAdmin, err := sm.site.Get(models.ContentTypeStudentData)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.profileService = NewProfileService(sm.repo, sm.logger, sm.validator, sm.publisher, profileAdmin)
	sm.studentDataService = NewStudentDataService(sm.repo, sm.logger, sm.validator, sm.publisher, studentAdmin)
	sm.accountService = NewAccountService(sm.repo, sm.logger, sm.publisher)
	sm.adminLogService = NewAdminLogService(sm.repo, sm.logger)

	profiles := sm.profileService
	if !sm.config.ProvisionProfiles {
		profiles = nil
	}
	sm.eventHandler = NewRecordEventHandler(profiles, sm.cacheManager, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) UserProfile() ProfileService {
	sm.mustBeInitialized()
	return sm.profileService
}

func (sm *serviceManager) StudentData() StudentDataService {
	sm.mustBeInitialized()
	return sm.studentDataService
}

func (sm *serviceManager) Account() AccountService {
	sm.mustBeInitialized()
	return sm.accountService
}

func (sm *serviceManager) AdminLog() AdminLogService {
	sm.mustBeInitialized()
	return sm.adminLogService
}

func (sm *serviceManager) EventHandler() events.Handler {
	sm.mustBeInitialized()
	return sm.eventHandler
}

func (sm *serviceManager) Site() *admin.Site {
	return sm.site
}

// AdminModel resolves a registered model name to its declaration and service
func (sm *serviceManager) AdminModel(name string) (*admin.ModelAdmin, AdminModelService, error) {
	sm.mustBeInitialized()

	modelAdmin, err := sm.site.Get(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	switch name {
	case models.ContentTypeUserProfile:
		return modelAdmin, sm.profileService, nil
	case models.ContentTypeStudentData:
		return modelAdmin, sm.studentDataService, nil
	}
	return nil, nil, fmt.Errorf("no service for model %s: %w", name, ErrNotFound)
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.config.DefaultTimeout)
		defer cancel()
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
