package broker

import "chat-broker/internal/models"

// Observer is a live handle to a connected client session. Send queues an
// event for push delivery and must return within the session's own bounded
// timeout; an error marks the observer unreachable. Close releases the
// session and is safe to call more than once.
type Observer interface {
	Send(event models.Event) error
	Close()
}
