// Package outbox queues domain events in the same transaction as the state
// change they describe. cmd/outbox-publisher drains the queue to Pub/Sub.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

// CurrentVersion is stamped on envelopes that do not pick a version.
const CurrentVersion = 1

type ActorRef struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and published
// as the message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

// Emitter is the dependency domain services take.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Emit writes event on tx. It is rolled back with the caller's transaction.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	row, env, err := s.build(event)
	if err != nil {
		return err
	}
	if err := s.repo.InsertTx(tx, row); err != nil {
		return fmt.Errorf("queue %s: %w", row.EventType, err)
	}

	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"event_id":     env.EventID,
		"event_type":   row.EventType,
		"aggregate_id": row.AggregateID.String(),
	}), "outbox event queued")
	return nil
}

func (s *Service) build(event DomainEvent) (models.OutboxEvent, PayloadEnvelope, error) {
	aggregate := event.EventType.Aggregate()
	switch {
	case aggregate == "":
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("unknown event type %q", event.EventType)
	case event.AggregateType != "" && event.AggregateType != aggregate:
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("%s is a %s event, not %s", event.EventType, aggregate, event.AggregateType)
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, fmt.Errorf("encode %s data: %w", event.EventType, err)
	}
	at := event.OccurredAt
	if at.IsZero() {
		at = s.now()
	}
	env := PayloadEnvelope{
		Version:    max(event.Version, CurrentVersion),
		EventID:    uuid.NewString(),
		OccurredAt: at.UTC(),
		Actor:      event.Actor,
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return models.OutboxEvent{}, PayloadEnvelope{}, err
	}

	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     event.EventType,
		AggregateType: aggregate,
		AggregateID:   event.AggregateID,
		Payload:       body,
		CreatedAt:     env.OccurredAt,
	}, env, nil
}
