package project

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

var tracer = otel.Tracer("project_usecase")

type CreateProjectUseCase struct {
	projectRepo project.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewCreateProjectUseCase(pRepo project.Repository, pub service.EventPublisher, log logger.Logger) *CreateProjectUseCase {
	return &CreateProjectUseCase{
		projectRepo: pRepo,
		publisher:   pub,
		logger:      log,
	}
}

type CreateProjectInput struct {
	ProfileID int64
	Actor     string
	Project   project.NewProject
}

type CreateProjectOutput struct {
	Project *project.Project
}

func (uc *CreateProjectUseCase) Execute(ctx context.Context, input CreateProjectInput) (*CreateProjectOutput, error) {
	ctx, span := tracer.Start(ctx, "CreateProject")
	defer span.End()
	span.SetAttributes(attribute.Int64("profile_id", input.ProfileID))

	if err := input.Project.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p, err := uc.projectRepo.Create(ctx, input.ProfileID, input.Project)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProjectCreated, p.ProfileID, p.ID, input.Actor))

	return &CreateProjectOutput{Project: p}, nil
}
