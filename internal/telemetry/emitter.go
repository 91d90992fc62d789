// Package telemetry records operational events for the arcade.
package telemetry

import (
	"context"
	"time"

	"github.com/pixelfount/arcade/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, severity Severity, operation, detail string) error {
	if e == nil || e.store == nil {
		return nil
	}
	now := time.Now().UTC()
	if e.clock != nil {
		now = e.clock().UTC()
	}
	return e.store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		Timestamp: now,
		Severity:  string(severity),
		Operation: operation,
		Detail:    detail,
	})
}
