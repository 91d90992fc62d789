package chroma

import (
	"time"

	"github.com/shopspring/decimal"
)

// PixelState is the externally visible state of one pixel. Heat is always the
// decayed value as of the query time; lock staleness depends on the read path
// (see Pixel and Region).
type PixelState struct {
	Coord       Coord
	Owner       string
	Color       uint32
	Heat        int
	LastPlaced  time.Time
	Locked      bool
	LockedUntil time.Time
}

// PixelPrice returns the current placement price for a coordinate, computed
// with exact integer scaling so repeated queries match the amount charged at
// submission time.
func (e *Engine) PixelPrice(x, y int, now time.Time) (decimal.Decimal, error) {
	if err := validateCoordinates(x, y); err != nil {
		return decimal.Decimal{}, err
	}
	coord := Coord{X: x, Y: y}
	shard := e.shard(coord.Key())
	shard.mu.Lock()
	heat := e.currentHeat(shard.pixels[coord.Key()], now)
	shard.mu.Unlock()
	return e.priceForHeat(heat), nil
}

// LockPrice returns the current lock price: the pixel price times the lock
// multiplier.
func (e *Engine) LockPrice(x, y int, now time.Time) (decimal.Decimal, error) {
	price, err := e.PixelPrice(x, y, now)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Mul(decimal.NewFromInt(e.cfg.LockMultiplier)), nil
}

// Pixel returns the effective state of one pixel: heat decayed and an expired
// lock reported as cleared.
func (e *Engine) Pixel(x, y int, now time.Time) (PixelState, error) {
	if err := validateCoordinates(x, y); err != nil {
		return PixelState{}, err
	}
	coord := Coord{X: x, Y: y}
	shard := e.shard(coord.Key())
	shard.mu.Lock()
	defer shard.mu.Unlock()

	px := shard.pixels[coord.Key()]
	state := e.snapshot(coord, px, now)
	if state.Locked && !now.Before(state.LockedUntil) {
		state.Locked = false
		state.LockedUntil = time.Time{}
	}
	return state, nil
}

// Region returns the state of every pixel in the rectangle [x0,x0+w) x
// [y0,y0+h), row-major.
//
// Heat is decayed per pixel, but lock flags are reported as stored: a lock
// whose expiry has passed still shows Locked=true here. This staleness is a
// deliberate property of the bulk read (the single-pixel read clears expired
// locks); callers must re-check LockedUntil against their own clock.
func (e *Engine) Region(x0, y0, w, h int, now time.Time) ([]PixelState, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrCoordinatesInvalid
	}
	if err := validateCoordinates(x0, y0); err != nil {
		return nil, err
	}
	if err := validateCoordinates(x0+w-1, y0+h-1); err != nil {
		return nil, err
	}

	states := make([]PixelState, 0, w*h)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			coord := Coord{X: x, Y: y}
			shard := e.shard(coord.Key())
			shard.mu.Lock()
			states = append(states, e.snapshot(coord, shard.pixels[coord.Key()], now))
			shard.mu.Unlock()
		}
	}
	return states, nil
}

// DecayHeat persists the decayed heat value for a pixel, advancing its decay
// basis by the consumed periods so later reads do not decay twice. It exists
// as an explicit maintenance call mirroring the source ledger's storage
// refresh; reads never need it for correctness.
func (e *Engine) DecayHeat(x, y int, now time.Time) (int, error) {
	if err := validateCoordinates(x, y); err != nil {
		return 0, err
	}
	coord := Coord{X: x, Y: y}
	shard := e.shard(coord.Key())
	shard.mu.Lock()
	defer shard.mu.Unlock()

	px := shard.pixels[coord.Key()]
	if px == nil {
		return 0, nil
	}
	elapsed := now.Sub(px.lastPlaced)
	if elapsed < 0 {
		return px.heat, nil
	}
	periods := int(elapsed / e.cfg.HeatDecayPeriod)
	if periods == 0 {
		return px.heat, nil
	}
	if periods > px.heat {
		periods = px.heat
	}
	px.heat -= periods
	px.lastPlaced = px.lastPlaced.Add(time.Duration(periods) * e.cfg.HeatDecayPeriod)
	return px.heat, nil
}

// snapshot copies stored pixel state with heat decayed. Lock fields are
// copied as stored.
func (e *Engine) snapshot(coord Coord, px *pixel, now time.Time) PixelState {
	if px == nil {
		return PixelState{Coord: coord}
	}
	return PixelState{
		Coord:       coord,
		Owner:       px.owner,
		Color:       px.color,
		Heat:        e.currentHeat(px, now),
		LastPlaced:  px.lastPlaced,
		Locked:      px.locked,
		LockedUntil: px.lockedUntil,
	}
}
