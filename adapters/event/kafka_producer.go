package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const TopicProfileEvents = "profile.events"

const (
	ProfileCreated        = "profile.created"
	ProfileUpdated        = "profile.updated"
	ProfileDeleted        = "profile.deleted"
	ProjectCreated        = "project.created"
	ProjectUpdated        = "project.updated"
	ProjectDeleted        = "project.deleted"
	WorkExperienceCreated = "work_experience.created"
	WorkExperienceUpdated = "work_experience.updated"
	WorkExperienceDeleted = "work_experience.deleted"
)

// ProfileEventPayload describes one committed mutation of a profile
// aggregate. EntityID is the profile itself or the touched child row.
type ProfileEventPayload struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProfileID  int64     `json:"profile_id"`
	EntityID   int64     `json:"entity_id"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProfileEvent stamps a payload with a fresh id and the current time.
func NewProfileEvent(eventType string, profileID, entityID int64, actor string) ProfileEventPayload {
	return ProfileEventPayload{
		EventID:    uuid.New(),
		EventType:  eventType,
		ProfileID:  profileID,
		EntityID:   entityID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
	logger              logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// Async: WriteMessages returns at once; delivery errors surface in Completion.
	profileWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicProfileEvents,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Failed to deliver profile events", err, zap.Int("count", len(messages)))
			}
		},
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		ProfileEventsWriter: profileWriter,
		logger:              log,
	}, nil
}

// PublishProfileEvent keys messages by profile id so one profile's events
// stay ordered within a partition.
func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal profile event failed: %w", err)
	}

	return c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(payload.ProfileID, 10)),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishProfileEvent(context.Context, ProfileEventPayload) error {
	return nil
}

func DecodeProfileEvent(data []byte) (ProfileEventPayload, error) {
	var payload ProfileEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal profile event failed: %w", err)
	}
	if payload.EventID == uuid.Nil || payload.EventType == "" {
		return payload, fmt.Errorf("profile event is missing event_id or event_type")
	}
	return payload, nil
}
