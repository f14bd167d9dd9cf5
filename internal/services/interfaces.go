package services

import (
	"context"
	"time"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/serializers"
)

// ===== REQUEST/RESPONSE DTOs =====

// Identity is a verified identity-provider subject
type Identity struct {
	ExternalID string
	Username   string
	Email      string
	IsAdmin    bool
}

type AccountListResponse struct {
	Users   []*models.User `json:"users"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

type HistoryEntry struct {
	ID            uint                  `json:"id"`
	ActionTime    time.Time             `json:"action_time"`
	ActorID       *uint                 `json:"actor_id"`
	ActorUsername string                `json:"actor_username,omitempty"`
	ContentType   string                `json:"content_type"`
	ObjectID      uint                  `json:"object_id"`
	ObjectRepr    string                `json:"object_repr"`
	Action        string                `json:"action"`
	ChangeMessage *models.ChangeMessage `json:"change_message,omitempty"`
}

type HistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
	Total   int64           `json:"total"`
}

// ===== SERVICE INTERFACES =====

// AdminModelService is the admin surface of one registered model. Bodies
// and results use the model's serializer representation.
type AdminModelService interface {
	ChangeList(ctx context.Context, params *admin.ChangeListParams) (*admin.ChangeList, error)
	ExportRows(ctx context.Context, params *admin.ChangeListParams) ([]admin.Row, error)
	GetRepresentation(ctx context.Context, id uint) (interface{}, error)
	CreateFromJSON(ctx context.Context, body []byte, actorID uint) (interface{}, error)
	UpdateFromJSON(ctx context.Context, id uint, body []byte, actorID uint) (interface{}, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type ProfileService interface {
	AdminModelService

	Create(ctx context.Context, rep *serializers.UserProfileRepresentation, actorID uint) (*serializers.UserProfileRepresentation, error)
	GetByID(ctx context.Context, id uint) (*serializers.UserProfileRepresentation, error)
	GetByUser(ctx context.Context, userID uint) (*serializers.UserProfileRepresentation, error)
	Update(ctx context.Context, id uint, rep *serializers.UserProfileRepresentation, actorID uint) (*serializers.UserProfileRepresentation, error)

	// EnsureProfile returns the account's profile, creating an empty one
	// when missing. Concurrent callers converge on one row.
	EnsureProfile(ctx context.Context, userID uint) (*serializers.UserProfileRepresentation, error)
}

type StudentDataService interface {
	AdminModelService

	Create(ctx context.Context, rep *serializers.StudentDataRepresentation, actorID uint) (*serializers.StudentDataRepresentation, error)
	GetByID(ctx context.Context, id uint) (*serializers.StudentDataRepresentation, error)
	GetByUser(ctx context.Context, userID uint) (*serializers.StudentDataRepresentation, error)
	Update(ctx context.Context, id uint, rep *serializers.StudentDataRepresentation, actorID uint) (*serializers.StudentDataRepresentation, error)
}

type AccountService interface {
	// Provision finds or creates the local account for a verified identity
	Provision(ctx context.Context, identity *Identity) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, query string, page, perPage int) (*AccountListResponse, error)
	// Delete removes the account together with its records
	Delete(ctx context.Context, id uint, actorID uint) error
}

type AdminLogService interface {
	History(ctx context.Context, filters repositories.AdminLogFilters) (*HistoryResponse, error)
}

// ServiceManager wires and exposes every service
type ServiceManager interface {
	UserProfile() ProfileService
	StudentData() StudentDataService
	Account() AccountService
	AdminLog() AdminLogService

	// Admin registry lookups
	Site() *admin.Site
	AdminModel(name string) (*admin.ModelAdmin, AdminModelService, error)

	// EventHandler consumes record events published by the services
	EventHandler() events.Handler

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
