package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeRecordCreated = "record.created"
	TypeRecordUpdated = "record.updated"
	TypeRecordDeleted = "record.deleted"
	TypeUserCreated   = "user.created"
	TypeUserDeleted   = "user.deleted"
)

const (
	EventSource  = "profile-service"
	EventVersion = "1.0"
)

// RecordEvent announces a committed change to a learner record or account.
type RecordEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	Model    string `json:"model"`
	ObjectID uint   `json:"object_id"`
	UserID   uint   `json:"user_id"`
	ActorID  *uint  `json:"actor_id,omitempty"`
}

// NewRecordEvent stamps a new event with id, source and time.
func NewRecordEvent(eventType, model string, objectID, userID uint, actorID *uint) *RecordEvent {
	return &RecordEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Model:     model,
		ObjectID:  objectID,
		UserID:    userID,
		ActorID:   actorID,
	}
}

// EventPublisher publishes record events
type EventPublisher interface {
	Publish(ctx context.Context, event *RecordEvent) error
	Close() error
}

// Handler consumes one event
type Handler func(ctx context.Context, event *RecordEvent) error
