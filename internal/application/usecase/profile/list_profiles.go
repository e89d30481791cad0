package profile

import (
	"context"

	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
)

type ListProfilesUseCase struct {
	profileRepo profile.Repository
}

func NewListProfilesUseCase(repo profile.Repository) *ListProfilesUseCase {
	return &ListProfilesUseCase{profileRepo: repo}
}

type ListProfilesInput struct {
	Offset int
	Limit  int
}

func (uc *ListProfilesUseCase) Execute(ctx context.Context, input ListProfilesInput) ([]*profile.Profile, error) {
	ctx, span := tracer.Start(ctx, "ListProfiles")
	defer span.End()

	offset, limit := NormalizePage(input.Offset, input.Limit)
	profiles, err := uc.profileRepo.List(ctx, offset, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return profiles, nil
}
