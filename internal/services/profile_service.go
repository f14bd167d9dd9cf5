package services

import (
	"context"
	"log/slog"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/serializers"
	"github.com/curio-learn/profile-service/internal/validator"
)

type profileService struct {
	*recordService[models.UserProfile, *models.UserProfile, serializers.UserProfileRepresentation]
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, modelAdmin *admin.ModelAdmin) ProfileService {
	serializer := serializers.NewUserProfileSerializer(validator)

	return &profileService{
		recordService: &recordService[models.UserProfile, *models.UserProfile, serializers.UserProfileRepresentation]{
			repo:      repo,
			logger:    logger,
			publisher: publisher,
			admin:     modelAdmin,
			codec: recordCodec[models.UserProfile, serializers.UserProfileRepresentation]{
				contentType: models.ContentTypeUserProfile,
				fields:      serializers.UserProfileFields,
				store: func(r repositories.Repository) recordRepository[models.UserProfile] {
					return r.UserProfile()
				},
				toRep:      serializer.ToRepresentation,
				toInternal: serializer.ToInternal,
				decode:     serializer.Decode,
				setRepID: func(rep *serializers.UserProfileRepresentation, id uint) {
					rep.ID = id
				},
			},
		},
	}
}

func (s *profileService) EnsureProfile(ctx context.Context, userID uint) (*serializers.UserProfileRepresentation, error) {
	if rep, err := s.GetByUser(ctx, userID); err == nil {
		return rep, nil
	} else if !IsNotFound(err) {
		return nil, err
	}

	profile := &models.UserProfile{UserID: userID}
	if err := s.repo.UserProfile().Create(ctx, profile); err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a race with another caller; theirs is the profile.
			return s.GetByUser(ctx, userID)
		}
		return nil, mapRepositoryError(err, "ensure profile")
	}

	s.logger.Info("Profile created for account", "user_id", userID, "profile_id", profile.ID)
	publish(ctx, s.publisher, s.logger, events.NewRecordEvent(events.TypeRecordCreated, models.ContentTypeUserProfile, profile.ID, userID, nil))

	return s.codec.toRep(profile), nil
}
