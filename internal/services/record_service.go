package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/serializers"
)

// recordRepository is the storage surface shared by the learner record types
type recordRepository[M any] interface {
	Create(ctx context.Context, record *M) error
	GetByID(ctx context.Context, id uint) (*M, error)
	GetByUserID(ctx context.Context, userID uint) (*M, error)
	Update(ctx context.Context, record *M) error
	Delete(ctx context.Context, id uint) error
	ChangeList(ctx context.Context, query repositories.ChangeListQuery) ([]*M, int64, error)
	FilterChoices(ctx context.Context, field string) ([]repositories.FilterChoice, error)
}

// ownedRecord is implemented by pointers to records owned by one account
type ownedRecord[M any] interface {
	*M
	RecordID() uint
	OwnerID() uint
	Owner() *models.User
	SetOwner(u *models.User)
	String() string
}

// recordCodec binds a record type to its repository and serializer
type recordCodec[M any, R any] struct {
	contentType string
	fields      []string
	store       func(repositories.Repository) recordRepository[M]
	toRep       func(*M) *R
	toInternal  func(*R) (*M, error)
	decode      func([]byte) (*R, error)
	setRepID    func(*R, uint)
}

// recordService implements create/read/update/delete and the admin
// changelist for one record type. Every admin write is logged in the same
// transaction and announced after commit.
type recordService[M any, P ownedRecord[M], R any] struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	admin     *admin.ModelAdmin
	codec     recordCodec[M, R]
}

func (s *recordService[M, P, R]) GetByID(ctx context.Context, id uint) (*R, error) {
	record, err := s.codec.store(s.repo).GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "get "+s.codec.contentType)
	}
	return s.codec.toRep(record), nil
}

func (s *recordService[M, P, R]) GetByUser(ctx context.Context, userID uint) (*R, error) {
	record, err := s.codec.store(s.repo).GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "get "+s.codec.contentType+" by user")
	}
	return s.codec.toRep(record), nil
}

func (s *recordService[M, P, R]) Create(ctx context.Context, rep *R, actorID uint) (*R, error) {
	s.codec.setRepID(rep, 0)
	record, err := s.codec.toInternal(rep)
	if err != nil {
		return nil, validationError(err)
	}
	p := P(record)

	s.logger.Info("Creating record", "model", s.codec.contentType, "user_id", p.OwnerID(), "actor_id", actorID)

	owner, err := s.owner(ctx, p.OwnerID())
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := s.codec.store(tx).Create(ctx, record); err != nil {
			return err
		}
		p.SetOwner(owner)
		return writeLogEntry(ctx, tx, actorID, s.codec.contentType, p.RecordID(), p.String(),
			models.ActionAddition, models.ChangeMessage{Added: true})
	})
	if err != nil {
		return nil, s.writeError(err, "create", p.OwnerID())
	}

	s.logger.Info("Record created", "model", s.codec.contentType, "id", p.RecordID())
	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeRecordCreated, s.codec.contentType, p.RecordID(), p.OwnerID(), &actorID))

	return s.codec.toRep(record), nil
}

// Update replaces every field of record id with rep.
func (s *recordService[M, P, R]) Update(ctx context.Context, id uint, rep *R, actorID uint) (*R, error) {
	s.codec.setRepID(rep, id)
	record, err := s.codec.toInternal(rep)
	if err != nil {
		return nil, validationError(err)
	}
	p := P(record)

	s.logger.Info("Updating record", "model", s.codec.contentType, "id", id, "actor_id", actorID)

	owner, err := s.owner(ctx, p.OwnerID())
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		current, err := s.codec.store(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}

		changed, err := serializers.ChangedFields(s.codec.toRep(current), s.codec.toRep(record), s.codec.fields)
		if err != nil {
			return fmt.Errorf("diff %s: %w", s.codec.contentType, err)
		}

		if err := s.codec.store(tx).Update(ctx, record); err != nil {
			return err
		}
		p.SetOwner(owner)
		return writeLogEntry(ctx, tx, actorID, s.codec.contentType, id, p.String(),
			models.ActionChange, models.ChangeMessage{Changed: changed})
	})
	if err != nil {
		return nil, s.writeError(err, "update", p.OwnerID())
	}

	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeRecordUpdated, s.codec.contentType, id, p.OwnerID(), &actorID))

	return s.codec.toRep(record), nil
}

func (s *recordService[M, P, R]) Delete(ctx context.Context, id uint, actorID uint) error {
	s.logger.Info("Deleting record", "model", s.codec.contentType, "id", id, "actor_id", actorID)

	var ownerID uint
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		current, err := s.codec.store(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		p := P(current)
		ownerID = p.OwnerID()

		if owner, err := tx.User().GetByID(ctx, ownerID); err == nil {
			p.SetOwner(owner)
		}

		if err := s.codec.store(tx).Delete(ctx, id); err != nil {
			return err
		}
		return writeLogEntry(ctx, tx, actorID, s.codec.contentType, id, p.String(),
			models.ActionDeletion, models.ChangeMessage{Deleted: true})
	})
	if err != nil {
		return mapRepositoryError(err, "delete "+s.codec.contentType)
	}

	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeRecordDeleted, s.codec.contentType, id, ownerID, &actorID))
	return nil
}

// ===== ADMIN SURFACE =====

func (s *recordService[M, P, R]) ChangeList(ctx context.Context, params *admin.ChangeListParams) (*admin.ChangeList, error) {
	records, total, err := s.codec.store(s.repo).ChangeList(ctx, params.Query)
	if err != nil {
		return nil, mapRepositoryError(err, "list "+s.codec.contentType)
	}

	rows, err := s.buildRows(records)
	if err != nil {
		return nil, err
	}

	filters := make(map[string][]repositories.FilterChoice, len(s.admin.ListFilter))
	for _, field := range s.admin.ListFilter {
		choices, err := s.codec.store(s.repo).FilterChoices(ctx, field)
		if err != nil {
			return nil, mapRepositoryError(err, "load filter "+field)
		}
		filters[field] = choices
	}

	return &admin.ChangeList{
		Results: rows,
		Count:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
		Columns: s.admin.ListDisplay,
		Filters: filters,
	}, nil
}

// ExportRows returns every row matching params, ignoring its page, up to
// admin.MaxExportRows.
func (s *recordService[M, P, R]) ExportRows(ctx context.Context, params *admin.ChangeListParams) ([]admin.Row, error) {
	query := params.Query
	query.Limit = admin.MaxExportRows
	query.Offset = 0

	records, _, err := s.codec.store(s.repo).ChangeList(ctx, query)
	if err != nil {
		return nil, mapRepositoryError(err, "export "+s.codec.contentType)
	}
	return s.buildRows(records)
}

func (s *recordService[M, P, R]) GetRepresentation(ctx context.Context, id uint) (interface{}, error) {
	return s.GetByID(ctx, id)
}

func (s *recordService[M, P, R]) CreateFromJSON(ctx context.Context, body []byte, actorID uint) (interface{}, error) {
	rep, err := s.codec.decode(body)
	if err != nil {
		return nil, validationError(err)
	}
	return s.Create(ctx, rep, actorID)
}

func (s *recordService[M, P, R]) UpdateFromJSON(ctx context.Context, id uint, body []byte, actorID uint) (interface{}, error) {
	rep, err := s.codec.decode(body)
	if err != nil {
		return nil, validationError(err)
	}
	return s.Update(ctx, id, rep, actorID)
}

// ===== HELPERS =====

func (s *recordService[M, P, R]) buildRows(records []*M) ([]admin.Row, error) {
	rows := make([]admin.Row, 0, len(records))
	for _, record := range records {
		values, err := serializers.AsMap(s.codec.toRep(record))
		if err != nil {
			return nil, fmt.Errorf("render %s row: %w", s.codec.contentType, err)
		}

		username := ""
		if owner := P(record).Owner(); owner != nil {
			username = owner.Username
		}
		rows = append(rows, s.admin.BuildRow(values, username))
	}
	return rows, nil
}

// owner loads the account a record points at. A missing account is a
// field error on "user".
func (s *recordService[M, P, R]) owner(ctx context.Context, userID uint) (*models.User, error) {
	owner, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fieldError("user", fmt.Sprintf("invalid pk %d - object does not exist", userID), "exists", userID)
		}
		return nil, mapRepositoryError(err, "get owner")
	}
	return owner, nil
}

func (s *recordService[M, P, R]) writeError(err error, op string, userID uint) error {
	if repositories.IsDuplicateError(err) {
		return fmt.Errorf("%s with user %d %w", s.codec.contentType, userID, ErrAlreadyExists)
	}
	if errors.Is(err, ErrValidationFailed) {
		return err
	}
	return mapRepositoryError(err, op+" "+s.codec.contentType)
}

// writeLogEntry records an admin action inside the caller's transaction.
func writeLogEntry(ctx context.Context, tx repositories.Repository, actorID uint, contentType string, objectID uint, repr string, flag models.ActionFlag, msg models.ChangeMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal change message: %w", err)
	}

	entry := &models.AdminLogEntry{
		ContentType:   contentType,
		ObjectID:      objectID,
		ObjectRepr:    truncate(repr, 200),
		ActionFlag:    flag,
		ChangeMessage: datatypes.JSON(payload),
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	return tx.AdminLog().Create(ctx, entry)
}

// publish sends event after commit. Failures are logged; the write stands.
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.RecordEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event", "type", event.Type, "model", event.Model, "object_id", event.ObjectID, "error", err)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
