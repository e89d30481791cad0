package profile

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/application/service"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type DeleteProfileUseCase struct {
	profileRepo profile.Repository
	publisher   service.EventPublisher
	logger      logger.Logger
}

func NewDeleteProfileUseCase(repo profile.Repository, pub service.EventPublisher, log logger.Logger) *DeleteProfileUseCase {
	return &DeleteProfileUseCase{profileRepo: repo, publisher: pub, logger: log}
}

type DeleteProfileInput struct {
	ProfileID int64
	Actor     string
}

// Execute returns a not-found error when nothing was deleted, so a repeated
// delete reports not-found rather than failing.
func (uc *DeleteProfileUseCase) Execute(ctx context.Context, input DeleteProfileInput) error {
	ctx, span := tracer.Start(ctx, "DeleteProfile")
	defer span.End()

	found, err := uc.profileRepo.Delete(ctx, input.ProfileID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !found {
		return apperror.NewNotFound("profile", strconv.FormatInt(input.ProfileID, 10))
	}
	uc.logger.Info("Profile deleted", zap.Int64("profile_id", input.ProfileID), zap.String("actor", input.Actor))

	service.PublishBestEffort(ctx, uc.publisher, uc.logger,
		event.NewProfileEvent(event.ProfileDeleted, input.ProfileID, input.ProfileID, input.Actor))
	return nil
}
