package experience

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

var tracer = otel.Tracer("experience_usecase")

type ExperienceUseCase struct {
	experienceRepo experience.Repository
	publisher      service.EventPublisher
	logger         logger.Logger
}

func NewExperienceUseCase(repo experience.Repository, pub service.EventPublisher, log logger.Logger) *ExperienceUseCase {
	return &ExperienceUseCase{
		experienceRepo: repo,
		publisher:      pub,
		logger:         log,
	}
}

type CreateInput struct {
	ProfileID  int64
	Actor      string
	Experience experience.NewWorkExperience
}

func (uc *ExperienceUseCase) ExecuteCreate(ctx context.Context, input CreateInput) (*experience.WorkExperience, error) {
	ctx, span := tracer.Start(ctx, "CreateWorkExperience")
	defer span.End()

	if err := input.Experience.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	w, err := uc.experienceRepo.Create(ctx, input.ProfileID, input.Experience)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.WorkExperienceCreated, w.ProfileID, w.ID, input.Actor))
	return w, nil
}

func (uc *ExperienceUseCase) ExecuteGet(ctx context.Context, id int64) (*experience.WorkExperience, error) {
	return uc.experienceRepo.FindByID(ctx, id)
}

type UpdateInput struct {
	ExperienceID int64
	Actor        string
	Patch        experience.Patch
}

// ExecuteUpdate checks the date range against the stored row, since a patch
// may move only one end of it.
func (uc *ExperienceUseCase) ExecuteUpdate(ctx context.Context, input UpdateInput) (*experience.WorkExperience, error) {
	ctx, span := tracer.Start(ctx, "UpdateWorkExperience")
	defer span.End()

	if err := input.Patch.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if input.Patch.StartDate.Set || input.Patch.EndDate.Set {
		current, err := uc.experienceRepo.FindByID(ctx, input.ExperienceID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := input.Patch.ValidateAgainst(*current); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	w, err := uc.experienceRepo.Update(ctx, input.ExperienceID, input.Patch)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.WorkExperienceUpdated, w.ProfileID, w.ID, input.Actor))
	return w, nil
}

type DeleteInput struct {
	ExperienceID int64
	Actor        string
}

func (uc *ExperienceUseCase) ExecuteDelete(ctx context.Context, input DeleteInput) error {
	ctx, span := tracer.Start(ctx, "DeleteWorkExperience")
	defer span.End()

	w, err := uc.experienceRepo.FindByID(ctx, input.ExperienceID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	found, err := uc.experienceRepo.Delete(ctx, input.ExperienceID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !found {
		return apperror.NewNotFound("work experience", strconv.FormatInt(input.ExperienceID, 10))
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.WorkExperienceDeleted, w.ProfileID, w.ID, input.Actor))
	return nil
}
