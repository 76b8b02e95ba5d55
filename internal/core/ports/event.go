package ports

import (
	"context"
)

// AuditEvent is the wire form of an audit record as published to the
// message broker by the outbox relay.
type AuditEvent struct {
	RecordID  string `json:"record_id"`
	Actor     string `json:"actor"`
	Action    string `json:"action_type"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

type AuditEventPublisher interface {
	PublishAuditRecord(ctx context.Context, evt AuditEvent) error
}
