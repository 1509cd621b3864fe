package enums

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder     OutboxAggregateType = "order"
	AggregateInventory OutboxAggregateType = "inventory"
)

var aggregateTypes = []OutboxAggregateType{AggregateOrder, AggregateInventory}

func (a OutboxAggregateType) IsValid() bool { return known(aggregateTypes, a) }

func ParseOutboxAggregateType(raw string) (OutboxAggregateType, error) {
	return parse("aggregate type", aggregateTypes, raw)
}

type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventStockAdjusted      OutboxEventType = "stock_adjusted"
)

var eventTypes = []OutboxEventType{EventOrderCreated, EventOrderStatusChanged, EventStockAdjusted}

func (e OutboxEventType) IsValid() bool { return known(eventTypes, e) }

func ParseOutboxEventType(raw string) (OutboxEventType, error) {
	return parse("event type", eventTypes, raw)
}

// OutboxDLQErrorReason says why a row was moved to outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
