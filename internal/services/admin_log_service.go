package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

const maxHistoryEntries = 200

type adminLogService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAdminLogService(repo repositories.Repository, logger *slog.Logger) AdminLogService {
	return &adminLogService{repo: repo, logger: logger}
}

// History returns admin log entries newest first.
func (s *adminLogService) History(ctx context.Context, filters repositories.AdminLogFilters) (*HistoryResponse, error) {
	if filters.Limit <= 0 || filters.Limit > maxHistoryEntries {
		filters.Limit = maxHistoryEntries
	}

	entries, total, err := s.repo.AdminLog().List(ctx, filters)
	if err != nil {
		return nil, mapRepositoryError(err, "list admin log")
	}

	out := make([]*HistoryEntry, 0, len(entries))
	for _, e := range entries {
		entry := &HistoryEntry{
			ID:          e.ID,
			ActionTime:  e.ActionTime,
			ActorID:     e.ActorID,
			ContentType: e.ContentType,
			ObjectID:    e.ObjectID,
			ObjectRepr:  e.ObjectRepr,
			Action:      e.ActionFlag.String(),
		}
		if e.Actor != nil {
			entry.ActorUsername = e.Actor.Username
		}
		if len(e.ChangeMessage) > 0 {
			var msg models.ChangeMessage
			if err := json.Unmarshal(e.ChangeMessage, &msg); err != nil {
				s.logger.Warn("Undecodable change message", "entry_id", e.ID, "error", err)
			} else {
				entry.ChangeMessage = &msg
			}
		}
		out = append(out, entry)
	}

	return &HistoryResponse{Entries: out, Total: total}, nil
}
