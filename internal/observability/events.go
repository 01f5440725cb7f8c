package observability

import (
	"context"
	"sync/atomic"
)

// Publisher is the subset of the AMQP publisher the event helpers need.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// EventEnvelope wraps operational events published to the broker exchange.
type EventEnvelope struct {
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	Payload   any    `json:"payload"`
}

var defaultPublisher atomic.Value

// SetPublisher installs the process-wide event publisher.
func SetPublisher(publisher Publisher) {
	defaultPublisher.Store(&publisher)
}

// PublishEvent sends an envelope through the configured publisher. A nil
// publisher makes this a no-op so tests and local runs need no broker.
func PublishEvent(ctx context.Context, routingKey string, envelope EventEnvelope) error {
	stored, ok := defaultPublisher.Load().(*Publisher)
	if !ok || stored == nil || *stored == nil {
		return nil
	}

	err := (*stored).Publish(ctx, routingKey, envelope)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
