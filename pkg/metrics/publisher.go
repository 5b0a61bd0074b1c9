package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publisher records outbox publisher batches and per-event outcomes.
type Publisher struct {
	batchDuration prometheus.Histogram
	events        *prometheus.CounterVec
}

const (
	PublishOK         = "published"
	PublishFailed     = "failed"
	PublishDeadLetter = "dead_lettered"
)

func NewPublisher(reg prometheus.Registerer) *Publisher {
	if reg == nil {
		return &Publisher{}
	}
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_total",
		Help: "Outbox events processed by outcome and event type.",
	}, []string{"outcome", "event_type"})
	reg.MustRegister(batchDuration, events)
	return &Publisher{batchDuration: batchDuration, events: events}
}

func (p *Publisher) ObserveBatch(duration time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(duration.Seconds())
}

func (p *Publisher) IncEvent(outcome, eventType string) {
	if p == nil || p.events == nil {
		return
	}
	p.events.WithLabelValues(normalizeLabel(outcome), normalizeLabel(eventType)).Inc()
}
