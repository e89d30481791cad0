package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded mutation of a profile aggregate.
type Entry struct {
	EventID    uuid.UUID
	EventType  string
	ProfileID  int64
	EntityID   int64
	Actor      string
	OccurredAt time.Time
}

type Repository interface {
	// Append is idempotent on EventID so redelivered events are harmless.
	Append(ctx context.Context, e Entry) error
}
