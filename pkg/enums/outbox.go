package enums

// OutboxAggregateType mirrors the outbox_aggregate_type Postgres enum.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
	AggregateJelly OutboxAggregateType = "jelly"
)

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder || a == AggregateJelly
}

// OutboxEventType mirrors the outbox_event_type Postgres enum. Each type
// belongs to exactly one aggregate.
type OutboxEventType string

const (
	EventOrderCreated OutboxEventType = "order_created"
	EventJellyCreated OutboxEventType = "jelly_created"
	EventJellyVoted   OutboxEventType = "jelly_voted"
	EventJellyDeleted OutboxEventType = "jelly_deleted"
)

var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventOrderCreated: AggregateOrder,
	EventJellyCreated: AggregateJelly,
	EventJellyVoted:   AggregateJelly,
	EventJellyDeleted: AggregateJelly,
}

// Aggregate is empty for unknown event types.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// OutboxDLQErrorReason is why the publisher gave up on an event.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonUnknownEvent OutboxDLQErrorReason = "unknown_event"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonNonRetryable, OutboxDLQReasonUnknownEvent:
		return true
	}
	return false
}
