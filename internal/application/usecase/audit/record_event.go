package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/domain/audit"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// RecordEventUseCase appends consumed profile events to the audit log.
type RecordEventUseCase struct {
	auditRepo audit.Repository
	logger    logger.Logger
}

func NewRecordEventUseCase(repo audit.Repository, log logger.Logger) *RecordEventUseCase {
	return &RecordEventUseCase{auditRepo: repo, logger: log}
}

func (uc *RecordEventUseCase) Execute(ctx context.Context, payload event.ProfileEventPayload) error {
	uc.logger.Debug("Recording profile event",
		zap.String("event_type", payload.EventType),
		zap.Int64("profile_id", payload.ProfileID),
	)

	err := uc.auditRepo.Append(ctx, audit.Entry{
		EventID:    payload.EventID,
		EventType:  payload.EventType,
		ProfileID:  payload.ProfileID,
		EntityID:   payload.EntityID,
		Actor:      payload.Actor,
		OccurredAt: payload.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("append audit entry failed: %w", err)
	}
	return nil
}
