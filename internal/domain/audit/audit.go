// Package audit defines the audit trail contract. Storage (including payload
// compression) lives in infrastructure.
package audit

import (
	"context"
	"time"
)

// Actions recorded in the trail.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionAdjust  = "adjust"
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Event is one audit record. Payload is marshalled (and compressed when
// large) by the recorder.
type Event struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	UserName   string
	OccurredAt time.Time
	Payload    any
}

// Recorder persists audit events. Recording failures must not fail the
// business operation; implementations log and swallow.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Noop discards all events. Used in tests.
type Noop struct{}

func (Noop) Record(ctx context.Context, event Event) {}
