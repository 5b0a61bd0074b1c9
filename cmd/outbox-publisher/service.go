package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
	"github.com/dreamcandylab/candylab-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type txRunner interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type topicSource interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	ClaimBatchTx(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	RecordFailureTx(tx *gorm.DB, id uuid.UUID, cause error) error
	RetireTx(tx *gorm.DB, id uuid.UUID, cause error) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	Stop()
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type publisherFactory func(topic string) publisher

// RelayParams groups dependencies for the relay.
type RelayParams struct {
	Config           config.OutboxConfig
	Logger           *logger.Logger
	DB               txRunner
	Topics           topicSource
	Repository       outboxRepository
	DLQ              dlqRepository
	Registry         eventResolver
	Metrics          *metrics.Publisher
	PublisherFactory publisherFactory
}

// Relay drains outbox_events into Pub/Sub. Rows that cannot be delivered
// are moved to outbox_dlq.
type Relay struct {
	logg         *logger.Logger
	db           txRunner
	topics       topicSource
	repo         outboxRepository
	dlq          dlqRepository
	registry     eventResolver
	metrics      *metrics.Publisher
	newPublisher publisherFactory

	mu         sync.Mutex
	publishers map[string]publisher

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	now          func() time.Time
}

func NewRelay(params RelayParams) (*Relay, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Topics == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.DLQ == nil:
		return nil, errors.New("dlq repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			p := params.Topics.Publisher(topic)
			if p == nil {
				return nil
			}
			return &gcpPublisher{p: p}
		}
	}

	batch := params.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	poll := params.Config.PollInterval()
	if poll <= 0 {
		poll = defaultPollInterval
	}
	attempts := params.Config.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	return &Relay{
		logg:         params.Logger,
		db:           params.DB,
		topics:       params.Topics,
		repo:         params.Repository,
		dlq:          params.DLQ,
		registry:     params.Registry,
		metrics:      params.Metrics,
		newPublisher: factory,
		publishers:   map[string]publisher{},
		batchSize:    batch,
		maxAttempts:  attempts,
		pollInterval: poll,
		now:          time.Now,
	}, nil
}

// Run polls until ctx is cancelled. Failed batches back off exponentially
// with jitter; a full batch is followed immediately by the next one.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := r.topics.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping failed: %w", err)
	}

	backoff := r.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		processed, err := r.drainOnce(ctx)
		if err != nil {
			r.logg.Error(ctx, "outbox batch failed", err)
			backoff = nextBackoff(backoff, r.pollInterval, maxBackoff)
			if err := sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}
		backoff = r.pollInterval

		if processed >= r.batchSize {
			continue
		}
		if err := sleep(ctx, withJitter(r.pollInterval)); err != nil {
			return err
		}
	}
}

// drainOnce handles one batch inside a single transaction and returns the
// number of rows it touched.
func (r *Relay) drainOnce(ctx context.Context) (int, error) {
	start := r.now()
	defer func() { r.metrics.ObserveBatch(r.now().Sub(start)) }()

	processed := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.repo.ClaimBatchTx(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events)
		for _, event := range events {
			if err := r.handle(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

// handle publishes one row. Only bookkeeping failures are returned; delivery
// failures are recorded on the row.
func (r *Relay) handle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	resolved, err := r.registry.Resolve(event)
	if err != nil {
		reason := enums.OutboxDLQReasonNonRetryable
		if !event.EventType.IsValid() {
			reason = enums.OutboxDLQReasonUnknownEvent
		}
		return r.deadLetter(ctx, tx, event, reason, err, r.fields(event, nil))
	}

	fields := r.fields(event, resolved)
	pubErr := r.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := r.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		r.metrics.IncEvent(metrics.PublishOK, string(event.EventType))
		r.logg.Debug(r.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	}

	var nonRetryable registry.NonRetryableError
	if errors.As(pubErr, &nonRetryable) {
		return r.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, pubErr, fields)
	}
	if event.AttemptCount+1 >= r.maxAttempts {
		return r.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("max publish attempts reached: %w", pubErr), fields)
	}

	fields["attempt_count"] = event.AttemptCount + 1
	r.logg.Warn(r.logg.WithField(r.logg.WithFields(ctx, fields), "error", pubErr.Error()), "outbox publish failed")
	if err := r.repo.RecordFailureTx(tx, event.ID, pubErr); err != nil {
		return fmt.Errorf("mark failed %s: %w", event.ID, err)
	}
	r.metrics.IncEvent(metrics.PublishFailed, string(event.EventType))
	return nil
}

func (r *Relay) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, fields map[string]any) error {
	fields["error_reason"] = reason
	r.logg.Warn(r.logg.WithField(r.logg.WithFields(ctx, fields), "error", cause.Error()), "outbox event dead-lettered")

	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount + 1,
		FailedAt:      r.now().UTC(),
	}
	if err := r.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := r.repo.RetireTx(tx, event.ID, cause); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	r.metrics.IncEvent(metrics.PublishDeadLetter, string(event.EventType))
	return nil
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := r.publisherFor(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned no result for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

func (r *Relay) publisherFor(topic string) publisher {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.publishers[topic]; ok {
		return p
	}
	p := r.newPublisher(topic)
	if p != nil {
		r.publishers[topic] = p
	}
	return p
}

// Close flushes and stops every topic publisher.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs error
	for topic, p := range r.publishers {
		errs = multierr.Append(errs, stopPublisher(topic, p))
		delete(r.publishers, topic)
	}
	return errs
}

func stopPublisher(topic string, p publisher) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stop publisher %s: %v", topic, rec)
		}
	}()
	p.Stop()
	return nil
}

func (r *Relay) fields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if resolved != nil {
		fields["topic"] = resolved.Descriptor.Topic
		if resolved.Envelope.EventID != "" {
			fields["event_id"] = resolved.Envelope.EventID
		}
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

type gcpPublisher struct {
	p *gcppubsub.Publisher
}

func (g *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.p.Publish(ctx, msg)
}

func (g *gcpPublisher) Stop() {
	g.p.Stop()
}
