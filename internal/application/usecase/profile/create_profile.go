package profile

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

type CreateProfileUseCase struct {
	profileRepo profile.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewCreateProfileUseCase(repo profile.Repository, pub service.EventPublisher, log logger.Logger) *CreateProfileUseCase {
	return &CreateProfileUseCase{profileRepo: repo, publisher: pub, logger: log}
}

type CreateProfileInput struct {
	Actor   string
	Profile profile.NewProfile
}

type CreateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *CreateProfileUseCase) Execute(ctx context.Context, input CreateProfileInput) (*CreateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "CreateProfile")
	defer span.End()

	in := input.Profile
	in.Normalize()
	if err := in.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	existing, err := uc.profileRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if existing != nil {
		err := apperror.NewConflict("profile", "email", in.Email)
		span.RecordError(err)
		return nil, err
	}

	p, err := uc.profileRepo.Create(ctx, in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("profile_id", p.ID))
	uc.logger.Info("Profile created", zap.Int64("profile_id", p.ID), zap.String("actor", input.Actor))

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProfileCreated, p.ID, p.ID, input.Actor))

	return &CreateProfileOutput{Profile: p}, nil
}
