package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OrderSourceCart   = "cart"
	OrderSourceDirect = "direct"

	VoteAccepted  = "accepted"
	VoteDuplicate = "duplicate"
	VoteLocked    = "locked"
)

// Storefront counts orders and contest votes.
type Storefront struct {
	ordersCreated *prometheus.CounterVec
	revenue       prometheus.Counter
	votes         *prometheus.CounterVec
	jellyDeletes  prometheus.Counter
}

// NewStorefront registers the storefront metrics on reg. A nil registerer
// yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders recorded, by cart or direct purchase.",
	}, []string{"source"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_revenue_won_total",
		Help: "Sum of order final totals in KRW.",
	})
	votes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_total",
		Help: "Vote attempts by outcome.",
	}, []string{"result"})
	jellyDeletes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jellies_deleted_total",
		Help: "Lab jellies deleted together with their votes.",
	})
	reg.MustRegister(ordersCreated, revenue, votes, jellyDeletes)
	return &Storefront{
		ordersCreated: ordersCreated,
		revenue:       revenue,
		votes:         votes,
		jellyDeletes:  jellyDeletes,
	}
}

// ObserveOrder records a placed order and its final total.
func (s *Storefront) ObserveOrder(source string, finalTotal int64) {
	if s == nil || s.ordersCreated == nil {
		return
	}
	s.ordersCreated.WithLabelValues(normalizeLabel(source)).Inc()
	if finalTotal > 0 {
		s.revenue.Add(float64(finalTotal))
	}
}

func (s *Storefront) IncVote(result string) {
	if s == nil || s.votes == nil {
		return
	}
	s.votes.WithLabelValues(normalizeLabel(result)).Inc()
}

func (s *Storefront) IncJellyDeleted() {
	if s == nil || s.jellyDeletes == nil {
		return
	}
	s.jellyDeletes.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
