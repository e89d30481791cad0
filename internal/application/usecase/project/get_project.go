package project

import (
	"context"

	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
)

type GetProjectUseCase struct {
	projectRepo project.Repository
}

func NewGetProjectUseCase(repo project.Repository) *GetProjectUseCase {
	return &GetProjectUseCase{projectRepo: repo}
}

func (uc *GetProjectUseCase) Execute(ctx context.Context, id int64) (*project.Project, error) {
	ctx, span := tracer.Start(ctx, "GetProject")
	defer span.End()

	p, err := uc.projectRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return p, nil
}
