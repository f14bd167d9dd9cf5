package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
)

const (
	defaultAccountsPerPage = 50
	maxAccountsPerPage     = 500
)

type accountService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewAccountService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) AccountService {
	return &accountService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *accountService) Provision(ctx context.Context, identity *Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, fmt.Errorf("identity without subject: %w", ErrUnauthorized)
	}

	user, err := s.repo.User().GetByExternalID(ctx, identity.ExternalID)
	switch {
	case err == nil:
		return s.syncIdentity(ctx, user, identity)
	case !repositories.IsNotFoundError(err):
		return nil, mapRepositoryError(err, "get user by external id")
	}

	username := strings.TrimSpace(identity.Username)
	if username == "" {
		username = identity.ExternalID
	}
	username = truncate(username, 150)
	externalID := identity.ExternalID
	user = &models.User{
		Username:   username,
		Email:      identity.Email,
		ExternalID: &externalID,
		IsStaff:    identity.IsAdmin,
		IsActive:   true,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, mapRepositoryError(err, "create user")
		}
		// Either a concurrent login created the same account, or the
		// username belongs to another subject.
		existing, getErr := s.repo.User().GetByExternalID(ctx, identity.ExternalID)
		if getErr != nil {
			return nil, fmt.Errorf("username %q is taken: %w", username, ErrAlreadyExists)
		}
		return existing, nil
	}

	s.logger.Info("Account provisioned", "user_id", user.ID, "username", user.Username, "is_staff", user.IsStaff)
	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeUserCreated, models.ContentTypeUser, user.ID, user.ID, nil))

	return user, nil
}

// syncIdentity copies email and admin flag from the identity provider.
func (s *accountService) syncIdentity(ctx context.Context, user *models.User, identity *Identity) (*models.User, error) {
	if user.Email == identity.Email && user.IsStaff == identity.IsAdmin {
		return user, nil
	}

	user.Email = identity.Email
	user.IsStaff = identity.IsAdmin
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, mapRepositoryError(err, "sync user")
	}
	return user, nil
}

func (s *accountService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "get user")
	}
	return user, nil
}

func (s *accountService) List(ctx context.Context, query string, page, perPage int) (*AccountListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultAccountsPerPage
	}
	perPage = min(perPage, maxAccountsPerPage)

	users, total, err := s.repo.User().List(ctx, repositories.UserFilters{
		Query:  query,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return nil, mapRepositoryError(err, "list users")
	}

	return &AccountListResponse{
		Users:   users,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *accountService) Delete(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		return fmt.Errorf("cannot delete own account: %w", ErrForbidden)
	}

	s.logger.Info("Deleting account", "user_id", id, "actor_id", actorID)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user, err := tx.User().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.User().Delete(ctx, id); err != nil {
			return err
		}
		return writeLogEntry(ctx, tx, actorID, models.ContentTypeUser, id, user.String(),
			models.ActionDeletion, models.ChangeMessage{Deleted: true})
	})
	if err != nil {
		return mapRepositoryError(err, "delete user")
	}

	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeUserDeleted, models.ContentTypeUser, id, id, &actorID))
	return nil
}
