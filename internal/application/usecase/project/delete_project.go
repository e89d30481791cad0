package project

import (
	"context"
	"strconv"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type DeleteProjectUseCase struct {
	projectRepo project.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewDeleteProjectUseCase(pRepo project.Repository, pub service.EventPublisher, log logger.Logger) *DeleteProjectUseCase {
	return &DeleteProjectUseCase{projectRepo: pRepo, publisher: pub, logger: log}
}

type DeleteProjectInput struct {
	ProjectID int64
	Actor     string
}

func (uc *DeleteProjectUseCase) Execute(ctx context.Context, input DeleteProjectInput) error {
	ctx, span := tracer.Start(ctx, "DeleteProject")
	defer span.End()

	// The owning profile id is only needed for the event.
	p, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	found, err := uc.projectRepo.Delete(ctx, input.ProjectID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !found {
		return apperror.NewNotFound("project", strconv.FormatInt(input.ProjectID, 10))
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProjectDeleted, p.ProfileID, p.ID, input.Actor))
	return nil
}
