package broker

import (
	"sort"
	"sync"

	"chat-broker/internal/models"
)

// PresenceRegistry owns the mapping from username to live observer handle.
// It is the source of truth for "is this user reachable right now". All other
// components go through its methods; none touch the map directly.
type PresenceRegistry struct {
	mu         sync.RWMutex
	observers  map[string]Observer
	dispatcher *Dispatcher
}

// NewPresenceRegistry creates an empty registry. The dispatcher attaches
// itself during construction, see NewDispatcher.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{observers: make(map[string]Observer)}
}

// Register maps a user to an observer, replacing any previous handle so a
// reconnect needs no explicit unregister. The replaced handle is closed.
// Everyone else is told the user came online.
func (r *PresenceRegistry) Register(username string, observer Observer) {
	r.mu.Lock()
	old, replaced := r.observers[username]
	r.observers[username] = observer
	r.mu.Unlock()

	if replaced && old != observer {
		old.Close()
	}
	r.broadcastExcept(username, models.PresenceEvent(username, true))
}

// Unregister removes the user's observer if present and tells everyone else
// the user went offline. Absent users are a no-op.
func (r *PresenceRegistry) Unregister(username string) {
	r.mu.Lock()
	observer, ok := r.observers[username]
	if ok {
		delete(r.observers, username)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	observer.Close()
	r.broadcastExcept(username, models.PresenceEvent(username, false))
}

// UnregisterObserver removes the mapping only while it still points at the
// given observer. A session's read loop uses this on disconnect so it cannot
// tear down the replacement registered by a reconnect.
func (r *PresenceRegistry) UnregisterObserver(username string, observer Observer) {
	r.mu.Lock()
	current, ok := r.observers[username]
	if ok && current == observer {
		delete(r.observers, username)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	observer.Close()
	r.broadcastExcept(username, models.PresenceEvent(username, false))
}

// Lookup returns the user's observer when registered.
func (r *PresenceRegistry) Lookup(username string) (Observer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	observer, ok := r.observers[username]
	return observer, ok
}

// ListOnline returns a sorted snapshot of currently registered usernames.
func (r *PresenceRegistry) ListOnline() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.observers))
	for username := range r.observers {
		users = append(users, username)
	}
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}

// Evict drops a user's observer without a presence broadcast. The dispatcher
// uses this when a delivery fails mid fan-out; broadcasting from that path
// would recurse into another fan-out.
func (r *PresenceRegistry) Evict(username string) {
	r.mu.Lock()
	observer, ok := r.observers[username]
	if ok {
		delete(r.observers, username)
	}
	r.mu.Unlock()

	if ok {
		observer.Close()
	}
}

func (r *PresenceRegistry) broadcastExcept(exclude string, event models.Event) {
	if r.dispatcher == nil {
		return
	}

	r.mu.RLock()
	targets := make(map[string]Observer, len(r.observers))
	for username, observer := range r.observers {
		if username == exclude {
			continue
		}
		targets[username] = observer
	}
	r.mu.RUnlock()

	for username, observer := range targets {
		r.dispatcher.Deliver(username, observer, event)
	}
}
