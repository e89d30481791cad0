package project

import (
	"context"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type UpdateProjectUseCase struct {
	projectRepo project.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewUpdateProjectUseCase(pRepo project.Repository, pub service.EventPublisher, log logger.Logger) *UpdateProjectUseCase {
	return &UpdateProjectUseCase{projectRepo: pRepo, publisher: pub, logger: log}
}

type UpdateProjectInput struct {
	ProjectID int64
	Actor     string
	Patch     project.Patch
}

type UpdateProjectOutput struct {
	Project *project.Project
}

func (uc *UpdateProjectUseCase) Execute(ctx context.Context, input UpdateProjectInput) (*UpdateProjectOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProject")
	defer span.End()

	if err := input.Patch.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, err := uc.projectRepo.Update(ctx, input.ProjectID, input.Patch)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProjectUpdated, p.ProfileID, p.ID, input.Actor))

	return &UpdateProjectOutput{Project: p}, nil
}
