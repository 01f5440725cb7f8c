package telemetry

import (
	"context"
	"log"
	"time"
)

// Publisher publishes audit events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditRecord is one audit line before it is wrapped for the wire.
type AuditRecord struct {
	Level     string
	Text      string
	RequestID string
	Username  *string
}

// AuditEnvelope is the audit event wire format.
type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	Username      *string      `json:"username,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload carries the audit line itself.
type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// AuditEmitter ships audit envelopes to the event exchange.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// NewAuditEmitter constructs an AuditEmitter.
func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one audit record; failures are logged, never propagated.
func (e *AuditEmitter) Emit(ctx context.Context, record AuditRecord) {
	if e == nil || e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, e.routingKey, e.envelope(record)); err != nil {
		log.Printf("audit publish failed request_id=%s: %v", record.RequestID, err)
	}
}

func (e *AuditEmitter) envelope(record AuditRecord) AuditEnvelope {
	return AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     record.RequestID,
		Username:      record.Username,
		Payload: AuditPayload{
			Level: record.Level,
			Text:  record.Text,
		},
	}
}
