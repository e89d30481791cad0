package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, payload event.ProfileEventPayload) error
}

// PublishBestEffort sends payload after the mutation has committed. A failed
// publish is logged and never reaches the caller.
func PublishBestEffort(ctx context.Context, pub EventPublisher, log logger.Logger, payload event.ProfileEventPayload) {
	if pub == nil {
		return
	}
	if err := pub.PublishProfileEvent(context.WithoutCancel(ctx), payload); err != nil {
		log.Error("Sent event to Kafka failed", err,
			zap.String("event_type", payload.EventType),
			zap.Int64("profile_id", payload.ProfileID),
		)
	}
}
