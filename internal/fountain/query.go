package fountain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/ledger"
)

// CurrentRound returns the active round's state. The round may already be
// overdue; it stays active until the next mutating call resolves it.
func (e *Engine) CurrentRound() RoundInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return infoOf(e.current)
}

// Round returns an archived or active round by id.
func (e *Engine) Round(id uint64) (RoundInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current.id == id {
		return infoOf(e.current), nil
	}
	r, ok := e.archive[id]
	if !ok {
		return RoundInfo{}, ErrRoundNotFound
	}
	return infoOf(r), nil
}

// TimeRemaining returns how long the active round has left, floored at zero.
func (e *Engine) TimeRemaining(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	remaining := e.current.endTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Participants returns the ordered participant list for a round.
func (e *Engine) Participants(id uint64) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.current
	if r.id != id {
		archived, ok := e.archive[id]
		if !ok {
			return nil, ErrRoundNotFound
		}
		r = archived
	}
	out := make([]string, len(r.participants))
	copy(out, r.participants)
	return out, nil
}

// AccumulatedRollover returns the undistributed share awaiting the next
// round. It is consumed into the new round's starting pool during
// resolution, so between rounds it reads zero.
func (e *Engine) AccumulatedRollover() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollover
}

// PrizeBreakdown is the would-be split of the active round if it resolved now.
type PrizeBreakdown struct {
	RoundID        uint64
	PrizePool      decimal.Decimal
	PlatformFee    decimal.Decimal
	WinnerAmount   decimal.Decimal
	RolloverAmount decimal.Decimal
}

// CurrentPrizeBreakdown recomputes the active round's split as if it resolved
// now, over the live pool. Display-only; resolution recomputes from scratch.
func (e *Engine) CurrentPrizeBreakdown() PrizeBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.current
	totalPool := r.prizePool.Add(e.rollover)
	platformFee := ledger.PercentFloor(r.prizePool, e.cfg.PlatformFeePercent)
	distributable := totalPool.Sub(platformFee)
	winnerAmount := ledger.PercentFloor(distributable, e.cfg.WinnerPercent)

	return PrizeBreakdown{
		RoundID:        r.id,
		PrizePool:      r.prizePool,
		PlatformFee:    platformFee,
		WinnerAmount:   winnerAmount,
		RolloverAmount: distributable.Sub(winnerAmount),
	}
}
