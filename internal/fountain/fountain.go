// Package fountain implements the round lottery: exact-fee entries pooled per
// round, lazy round rollover, hash-based winner selection, and a
// fee/winner/rollover split computed with exact integer arithmetic.
//
// The engine is a pure in-memory state machine; it computes payment
// obligations (platform fee, winner amount) but never moves funds.
package fountain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/ledger"
	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
)

// Config holds the lottery constants.
type Config struct {
	// EntryFee is the exact wei amount a toss must pay.
	EntryFee decimal.Decimal
	// RoundDuration bounds each round.
	RoundDuration time.Duration
	// PlatformFeePercent is taken from entry fees per toss and from the pool
	// at resolution.
	PlatformFeePercent int64
	// WinnerPercent of the distributable pool goes to the winner; the rest
	// rolls over.
	WinnerPercent int64
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if !c.EntryFee.IsPositive() || !ledger.IsIntegral(c.EntryFee) {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "entry fee must be a positive integer", map[string]string{"field": "EntryFee"})
	}
	if c.RoundDuration <= 0 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "round duration must be positive", map[string]string{"field": "RoundDuration"})
	}
	if c.PlatformFeePercent < 0 || c.PlatformFeePercent > 100 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "platform fee percent must be within 0-100", map[string]string{"field": "PlatformFeePercent"})
	}
	if c.WinnerPercent < 0 || c.WinnerPercent > 100 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "winner percent must be within 0-100", map[string]string{"field": "WinnerPercent"})
	}
	return nil
}

// round is the mutable state of one lottery round.
type round struct {
	id           uint64
	prizePool    decimal.Decimal
	startTime    time.Time
	endTime      time.Time
	participants []string
	members      map[string]struct{}
	chromaFees   decimal.Decimal

	complete       bool
	winner         string
	winnerAmount   decimal.Decimal
	platformFee    decimal.Decimal
	rolloverAmount decimal.Decimal
}

// Engine owns the round table and the accumulated rollover.
//
// One mutex serializes every operation: round resolution is single-flight by
// construction, and the participant read-check-then-append is atomic.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	current  *round
	archive  map[uint64]*round
	rollover decimal.Decimal

	// lastCaller is the most recent toss submitter; it seeds winner
	// selection, which makes selection manipulable by whoever triggers
	// resolution. That weakness is part of the tuned economics and is
	// preserved, not hardened.
	lastCaller string
}

// New creates a lottery engine and starts round 1 at genesis.
func New(cfg Config, genesis time.Time) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		archive:  make(map[uint64]*round),
		rollover: decimal.Zero,
	}
	e.current = e.newRound(1, genesis)
	return e, nil
}

// newRound creates the next active round, consuming the accumulated rollover
// as its starting pool.
func (e *Engine) newRound(id uint64, now time.Time) *round {
	r := &round{
		id:         id,
		prizePool:  e.rollover,
		startTime:  now,
		endTime:    now.Add(e.cfg.RoundDuration),
		members:    make(map[string]struct{}),
		chromaFees: decimal.Zero,
	}
	e.rollover = decimal.Zero
	return r
}
