package services

import (
	"context"
	"log/slog"

	"github.com/curio-learn/profile-service/internal/cache"
	"github.com/curio-learn/profile-service/internal/events"
)

// recordEventHandler reacts to account lifecycle events: new accounts get
// an empty profile, deleted accounts have their cached records dropped.
type recordEventHandler struct {
	profiles     ProfileService
	cacheManager *cache.CacheManager
	logger       *slog.Logger
}

func NewRecordEventHandler(profiles ProfileService, cacheManager *cache.CacheManager, logger *slog.Logger) events.Handler {
	h := &recordEventHandler{profiles: profiles, cacheManager: cacheManager, logger: logger}
	return h.Handle
}

func (h *recordEventHandler) Handle(ctx context.Context, event *events.RecordEvent) error {
	switch event.Type {
	case events.TypeUserCreated:
		if h.profiles == nil {
			return nil
		}
		if _, err := h.profiles.EnsureProfile(ctx, event.UserID); err != nil {
			if IsValidationError(err) {
				// Account was removed before the event arrived.
				h.logger.Warn("Skipping profile for missing account", "user_id", event.UserID)
				return nil
			}
			return err
		}
	case events.TypeUserDeleted:
		if h.cacheManager != nil {
			cache.InvalidateUserCache(ctx, h.cacheManager, event.UserID)
		}
	}
	return nil
}
