package arcade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/chroma"
	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/fountain"
	"github.com/pixelfount/arcade/internal/storage"
)

// PixelPrice quotes the current placement price for a coordinate.
func (a *App) PixelPrice(x, y int) (decimal.Decimal, error) {
	return a.canvas.PixelPrice(x, y, a.clock().UTC())
}

// LockPrice quotes the current lock price for a coordinate.
func (a *App) LockPrice(x, y int) (decimal.Decimal, error) {
	return a.canvas.LockPrice(x, y, a.clock().UTC())
}

// Pixel returns the effective state of one pixel.
func (a *App) Pixel(x, y int) (chroma.PixelState, error) {
	return a.canvas.Pixel(x, y, a.clock().UTC())
}

// Region returns a rectangle of pixel states, row-major.
func (a *App) Region(x0, y0, w, h int) ([]chroma.PixelState, error) {
	return a.canvas.Region(x0, y0, w, h, a.clock().UTC())
}

// CanvasStats returns canvas-wide counters.
func (a *App) CanvasStats() chroma.Stats {
	return a.canvas.Stats()
}

// DecayPixelHeat persists the decayed heat for one pixel (maintenance).
func (a *App) DecayPixelHeat(x, y int) (int, error) {
	return a.canvas.DecayHeat(x, y, a.clock().UTC())
}

// CurrentRound returns the active lottery round.
func (a *App) CurrentRound() fountain.RoundInfo {
	return a.lottery.CurrentRound()
}

// Round returns an active or archived lottery round by id.
func (a *App) Round(id uint64) (fountain.RoundInfo, error) {
	return a.lottery.Round(id)
}

// TimeRemaining returns how long the active round has left.
func (a *App) TimeRemaining() time.Duration {
	return a.lottery.TimeRemaining(a.clock().UTC())
}

// Participants returns the ordered participant list for a round.
func (a *App) Participants(id uint64) ([]string, error) {
	return a.lottery.Participants(id)
}

// AccumulatedRollover returns the undistributed rollover share.
func (a *App) AccumulatedRollover() decimal.Decimal {
	return a.lottery.AccumulatedRollover()
}

// CurrentPrizeBreakdown returns the would-be split of the active round.
func (a *App) CurrentPrizeBreakdown() fountain.PrizeBreakdown {
	return a.lottery.CurrentPrizeBreakdown()
}

// Events reads the journal for a game with Seq > sinceSeq.
func (a *App) Events(ctx context.Context, game event.Game, sinceSeq uint64, limit int) ([]event.Event, error) {
	return a.store.ListEvents(ctx, game, sinceSeq, limit)
}

// RoundFees returns the external fees credited to a round.
func (a *App) RoundFees(ctx context.Context, roundID uint64) ([]storage.RoundFee, error) {
	return a.store.ListRoundFees(ctx, roundID)
}
