// Package event defines the journal records the arcade core emits for the
// relay layer to persist and broadcast.
package event

import (
	"strings"
	"time"
)

// Game identifies which engine produced an event.
type Game string

const (
	// GameChroma is the collaborative canvas.
	GameChroma Game = "chroma"
	// GameFountain is the round lottery.
	GameFountain Game = "fountain"
)

// Type identifies the type of an arcade event.
type Type string

// Canvas events.
const (
	// TypePixelChanged records a pixel placement or lock repaint.
	TypePixelChanged Type = "pixel.changed"
	// TypePixelLocked records a premium write-protection on a pixel.
	TypePixelLocked Type = "pixel.locked"
)

// Lottery events.
const (
	// TypeCoinTossed records a lottery entry.
	TypeCoinTossed Type = "coin.tossed"
	// TypeRoundStarted records the start of a lottery round.
	TypeRoundStarted Type = "round.started"
	// TypeWinnerSelected records a resolved round's winner and splits.
	TypeWinnerSelected Type = "round.winner_selected"
)

// Event represents an immutable record in the arcade event journal.
type Event struct {
	// Game is the engine this event belongs to.
	Game Game
	// Seq is the event sequence number within the game (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// ActorID is the account that triggered the event (empty for system events).
	ActorID string
	// EntityID is the affected entity: a linearized pixel key or a round id.
	EntityID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g. "pixel", "round").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Sink receives events after they are journaled. The relay layer implements
// Sink to fan events out to its own mirror and websocket subscribers.
type Sink interface {
	Deliver(evt Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(evt Event)

// Deliver implements Sink.
func (f SinkFunc) Deliver(evt Event) {
	f(evt)
}
