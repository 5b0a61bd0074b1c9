// Package registry routes outbox rows to Pub/Sub topics and decodes their
// typed payloads.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/payloads"
)

type decodeFunc func(json.RawMessage) (any, error)

func decodeAs[T any]() decodeFunc {
	return func(raw json.RawMessage) (any, error) {
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// EventDescriptor is where one event type is published.
type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
}

type route struct {
	EventDescriptor
	versions map[int]decodeFunc
}

// ResolvedEvent is a validated row ready to publish.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// NonRetryableError marks rows that will never publish as stored.
type NonRetryableError struct {
	Err error
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable"
	}
	return "non-retryable: " + e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

// EventRegistry is immutable once built.
type EventRegistry struct {
	routes map[enums.OutboxEventType]route
}

// NewEventRegistry sends order_created to the orders topic and every jelly
// event to the contest topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	var missing []string
	if cfg.OrdersTopic == "" {
		missing = append(missing, "orders")
	}
	if cfg.ContestTopic == "" {
		missing = append(missing, "contest")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("pubsub topics not configured: %v", missing)
	}

	reg := &EventRegistry{routes: map[enums.OutboxEventType]route{}}
	reg.add(enums.EventOrderCreated, cfg.OrdersTopic, decodeAs[payloads.OrderCreatedEvent]())
	reg.add(enums.EventJellyCreated, cfg.ContestTopic, decodeAs[payloads.JellyCreatedEvent]())
	reg.add(enums.EventJellyVoted, cfg.ContestTopic, decodeAs[payloads.JellyVotedEvent]())
	reg.add(enums.EventJellyDeleted, cfg.ContestTopic, decodeAs[payloads.JellyDeletedEvent]())
	return reg, nil
}

func (r *EventRegistry) add(eventType enums.OutboxEventType, topic string, v1 decodeFunc) {
	r.routes[eventType] = route{
		EventDescriptor: EventDescriptor{
			EventType:     eventType,
			AggregateType: eventType.Aggregate(),
			Topic:         topic,
		},
		versions: map[int]decodeFunc{outbox.CurrentVersion: v1},
	}
}

// Topics returns each destination topic once, sorted.
func (r *EventRegistry) Topics() []string {
	var topics []string
	for _, rt := range r.routes {
		if !slices.Contains(topics, rt.Topic) {
			topics = append(topics, rt.Topic)
		}
	}
	slices.Sort(topics)
	return topics
}

// Resolve checks the row against its route and decodes the payload. Every
// failure is a NonRetryableError.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	rt, ok := r.routes[event.EventType]
	switch {
	case !ok:
		return nil, reject("no route for event type %q", event.EventType)
	case rt.AggregateType != event.AggregateType:
		return nil, reject("%s belongs to %s aggregates, row says %s", event.EventType, rt.AggregateType, event.AggregateType)
	case event.AggregateID == uuid.Nil:
		return nil, reject("%s row has no aggregate id", event.EventType)
	}

	var env outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &env); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("envelope: %w", err))
	}
	if data := bytes.TrimSpace(env.Data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, reject("%s envelope carries no data", event.EventType)
	}
	if env.Version == 0 {
		env.Version = outbox.CurrentVersion
	}
	decode, ok := rt.versions[env.Version]
	if !ok {
		return nil, reject("%s has no decoder for v%d", event.EventType, env.Version)
	}
	payload, err := decode(env.Data)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{Descriptor: rt.EventDescriptor, Envelope: env, Payload: payload}, nil
}

func reject(format string, args ...any) error {
	return NewNonRetryableError(fmt.Errorf(format, args...))
}
