package broker

import (
	"fmt"
	"sync"

	"chat-broker/internal/models"
)

// stubObserver records delivered events and can be told to fail, standing in
// for a dead client session.
type stubObserver struct {
	mu     sync.Mutex
	events []models.Event
	fail   bool
	closed bool
}

func (o *stubObserver) Send(event models.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return fmt.Errorf("observer unreachable")
	}
	o.events = append(o.events, event)
	return nil
}

func (o *stubObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *stubObserver) byType(eventType models.EventType) []models.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var matched []models.Event
	for _, event := range o.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func (o *stubObserver) setFail(fail bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fail = fail
}

func (o *stubObserver) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
