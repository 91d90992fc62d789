// Package storage defines the persistence interfaces for the arcade's own
// audit surfaces: the append-only event journal, the fee-by-round ledger, and
// operational telemetry. The relay layer's external mirror is out of scope;
// these stores exist so the core's history is auditable on its own.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/event"
	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// EventJournal persists arcade events with a gap-free per-game sequence.
type EventJournal interface {
	// AppendEvent assigns the next sequence number for the event's game and
	// persists the event, returning it with Seq populated.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns up to limit events for a game with Seq > sinceSeq,
	// in sequence order.
	ListEvents(ctx context.Context, game event.Game, sinceSeq uint64, limit int) ([]event.Event, error)
}

// RoundFee is one external fee credited to a lottery round.
type RoundFee struct {
	RoundID   uint64
	Amount    decimal.Decimal
	Source    string
	Timestamp time.Time
}

// FeeLedger records external fee inflow per round for audit.
type FeeLedger interface {
	RecordRoundFee(ctx context.Context, fee RoundFee) error
	ListRoundFees(ctx context.Context, roundID uint64) ([]RoundFee, error)
}

// TelemetryEvent is one operational telemetry record.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Operation string
	Detail    string
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// Store aggregates every persistence interface the arcade uses.
type Store interface {
	EventJournal
	FeeLedger
	TelemetryStore
	Close() error
}
