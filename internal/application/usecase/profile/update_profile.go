package profile

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type UpdateProfileUseCase struct {
	profileRepo profile.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewUpdateProfileUseCase(repo profile.Repository, pub service.EventPublisher, log logger.Logger) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{profileRepo: repo, publisher: pub, logger: log}
}

type UpdateProfileInput struct {
	ProfileID int64
	Actor     string
	Patch     profile.Patch
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.Int64("profile_id", input.ProfileID))

	p := input.Patch
	p.Normalize()
	if err := p.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if email, ok := p.Email.Get(); ok {
		owner, err := uc.profileRepo.FindByEmail(ctx, email)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if owner != nil && owner.ID != input.ProfileID {
			err := apperror.NewConflict("profile", "email", email)
			span.RecordError(err)
			return nil, err
		}
	}

	updated, err := uc.profileRepo.Update(ctx, input.ProfileID, p)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProfileUpdated, updated.ID, updated.ID, input.Actor))

	return &UpdateProfileOutput{Profile: updated}, nil
}
