package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-broker/internal/models"
)

const (
	sendQueueSize      = 32
	defaultSendTimeout = 2 * time.Second
	writeDeadline      = 10 * time.Second
)

// Session is the observer handle for one connected client. Events queue on a
// buffered channel drained by a single writer goroutine, so broker fan-out is
// never coupled to the client's network latency. A full queue or a closed
// session surfaces as a Send error, which the dispatcher turns into an
// eviction.
type Session struct {
	ID       string
	Username string

	conn        *websocket.Conn
	send        chan models.Event
	closed      chan struct{}
	closeOnce   sync.Once
	sendTimeout time.Duration
}

// NewSession wraps an upgraded connection and starts its writer.
func NewSession(username string, conn *websocket.Conn) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Username:    username,
		conn:        conn,
		send:        make(chan models.Event, sendQueueSize),
		closed:      make(chan struct{}),
		sendTimeout: defaultSendTimeout,
	}
	go s.writePump()
	return s
}

// Send queues an event for delivery. It blocks at most the session's send
// timeout when the queue is full.
func (s *Session) Send(event models.Event) error {
	select {
	case <-s.closed:
		return fmt.Errorf("session %s closed", s.ID)
	default:
	}

	select {
	case s.send <- event:
		return nil
	case <-s.closed:
		return fmt.Errorf("session %s closed", s.ID)
	case <-time.After(s.sendTimeout):
		return fmt.Errorf("session %s send queue full", s.ID)
	}
}

// Close tears the session down. Safe to call repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) writePump() {
	for {
		select {
		case event := <-s.send:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("event marshal failed session=%s: %v", s.ID, err)
				continue
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error session=%s user=%s: %v", s.ID, s.Username, err)
				s.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}
