package profile

import (
	"context"
	"strings"

	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

type GetProfileUseCase struct {
	profileRepo profile.Repository
}

func NewGetProfileUseCase(repo profile.Repository) *GetProfileUseCase {
	return &GetProfileUseCase{profileRepo: repo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, id int64) (*profile.Profile, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()

	p, err := uc.profileRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return p, nil
}

// ExecuteByEmail turns the store's "absent" result into a not-found error
// for the HTTP surface.
func (uc *GetProfileUseCase) ExecuteByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	ctx, span := tracer.Start(ctx, "GetProfileByEmail")
	defer span.End()

	email = strings.TrimSpace(email)
	p, err := uc.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("profile", email)
	}
	return p, nil
}
