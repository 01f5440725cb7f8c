package broker

import (
	"context"
	"log"

	"chat-broker/internal/models"
	"chat-broker/internal/observability"
)

// Dispatcher is the single delivery primitive shared by the registry, router
// and lifecycle coordinator. A failed delivery evicts the observer from the
// presence registry and is swallowed: one unreachable client must never abort
// fan-out to the rest.
type Dispatcher struct {
	registry *PresenceRegistry
}

// NewDispatcher wires a dispatcher to the registry it heals.
func NewDispatcher(registry *PresenceRegistry) *Dispatcher {
	d := &Dispatcher{registry: registry}
	registry.dispatcher = d
	return d
}

// Deliver pushes one event to one observer, evicting the user on failure.
func (d *Dispatcher) Deliver(username string, observer Observer, event models.Event) {
	if observer == nil {
		return
	}

	if err := observer.Send(event); err != nil {
		log.Printf("delivery failed user=%s event=%s: %v", username, event.Type, err)
		d.registry.Evict(username)
		observability.IncDeliveryFailure(string(event.Type))
		_ = observability.PublishEvent(context.Background(), "broker_events.delivery", observability.EventEnvelope{
			EventType: "broker_events",
			EventName: "delivery_failure",
			Payload: map[string]any{
				"user":   username,
				"event":  string(event.Type),
				"reason": err.Error(),
			},
		})
		return
	}
	observability.IncEventDelivered(string(event.Type))
}

// DeliverTo delivers to the user's registered observer, silently skipping
// offline users.
func (d *Dispatcher) DeliverTo(username string, event models.Event) {
	if observer, ok := d.registry.Lookup(username); ok {
		d.Deliver(username, observer, event)
	}
}
