package event

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventHandler must be idempotent on EventID: a message is handed over
// again after a failure and may be redelivered after a restart.
type EventHandler func(ctx context.Context, payload ProfileEventPayload) error

const (
	defaultMinBackoff = 200 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// ProfileEventConsumer reads profile events one at a time and commits an
// offset only after its event was handled. A failing handler blocks the
// loop and is retried with exponential backoff, so a later commit can
// never skip over an unrecorded event.
type ProfileEventConsumer struct {
	reader     MessageReader
	handle     EventHandler
	logger     logger.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewProfileEventConsumer(reader MessageReader, handle EventHandler, log logger.Logger) *ProfileEventConsumer {
	return &ProfileEventConsumer{
		reader:     reader,
		handle:     handle,
		logger:     log,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// WithBackoff overrides the retry delay bounds.
func (c *ProfileEventConsumer) WithBackoff(initial, limit time.Duration) *ProfileEventConsumer {
	c.minBackoff = initial
	c.maxBackoff = limit
	return c
}

// Run consumes until ctx is cancelled and then returns ctx.Err().
func (c *ProfileEventConsumer) Run(ctx context.Context) error {
	fetchDelay := c.minBackoff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("Failed to read message from Kafka", err, zap.Duration("retry_in", fetchDelay))
			if !sleepCtx(ctx, fetchDelay) {
				return ctx.Err()
			}
			fetchDelay = c.nextBackoff(fetchDelay)
			continue
		}
		fetchDelay = c.minBackoff

		if err := c.process(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *ProfileEventConsumer) process(ctx context.Context, msg kafka.Message) error {
	fields := []zap.Field{
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	}

	payload, err := DecodeProfileEvent(msg.Value)
	if err != nil {
		c.logger.Error("Skipping malformed event", err, fields...)
		c.commit(ctx, msg, fields)
		return nil
	}
	fields = append(fields, zap.String("event_id", payload.EventID.String()))

	delay := c.minBackoff
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, payload)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("Failed to record event", err,
			append(fields, zap.Int("attempt", attempt), zap.Duration("retry_in", delay))...)
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
		delay = c.nextBackoff(delay)
	}

	c.commit(ctx, msg, fields)
	return nil
}

// commit failures are only logged: the next successful commit on the
// partition covers this offset too.
func (c *ProfileEventConsumer) commit(ctx context.Context, msg kafka.Message, fields []zap.Field) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, fields...)
	}
}

func (c *ProfileEventConsumer) nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > c.maxBackoff {
		return c.maxBackoff
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
