package services

import (
	"log/slog"

	"github.com/curio-learn/profile-service/internal/admin"
	"github.com/curio-learn/profile-service/internal/events"
	"github.com/curio-learn/profile-service/internal/models"
	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/serializers"
	"github.com/curio-learn/profile-service/internal/validator"
)

type studentDataService struct {
	*recordService[models.StudentData, *models.StudentData, serializers.StudentDataRepresentation]
}

func NewStudentDataService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, modelAdmin *admin.ModelAdmin) StudentDataService {
	serializer := serializers.NewStudentDataSerializer(validator)

	return &studentDataService{
		recordService: &recordService[models.StudentData, *models.StudentData, serializers.StudentDataRepresentation]{
			repo:      repo,
			logger:    logger,
			publisher: publisher,
			admin:     modelAdmin,
			codec: recordCodec[models.StudentData, serializers.StudentDataRepresentation]{
				contentType: models.ContentTypeStudentData,
				fields:      serializers.StudentDataFields,
				store: func(r repositories.Repository) recordRepository[models.StudentData] {
					return r.StudentData()
				},
				toRep:      serializer.ToRepresentation,
				toInternal: serializer.ToInternal,
				decode:     serializer.Decode,
				setRepID: func(rep *serializers.StudentDataRepresentation, id uint) {
					rep.ID = id
				},
			},
		},
	}
}
