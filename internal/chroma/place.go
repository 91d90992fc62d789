package chroma

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/ledger"
)

// PlaceRequest describes a pixel placement submission. The caller and payment
// are assumed already authenticated and funded by the surrounding layer.
type PlaceRequest struct {
	Caller string
	X      int
	Y      int
	Color  uint32
	Paid   decimal.Decimal
	Now    time.Time
}

// PlaceResult captures a successful placement.
//
// PricePaid is the amount actually charged (the required price). Overpayment
// is not refunded here: whether to forward only PricePaid or the full payment
// is the caller's wallet decision. ProjectShare + PoolShare always equals
// PricePaid exactly; the odd wei lands in PoolShare.
type PlaceResult struct {
	Coord          Coord
	Owner          string
	Color          uint32
	NewHeat        int
	PricePaid      decimal.Decimal
	ProjectShare   decimal.Decimal
	PoolShare      decimal.Decimal
	FirstPlacement bool
	PlacedAt       time.Time
}

// LockRequest describes a pixel lock submission.
type LockRequest struct {
	Caller string
	X      int
	Y      int
	Color  uint32
	Paid   decimal.Decimal
	Now    time.Time
}

// LockResult captures a successful lock purchase. A lock is also a placement:
// the pixel is repainted, heated, and then write-protected until LockedUntil.
type LockResult struct {
	PlaceResult
	LockedUntil time.Time
}

// PlacePixel validates and applies a placement, returning the payment split
// the caller must route (half to the project wallet, half plus any odd wei to
// the lottery pool).
func (e *Engine) PlacePixel(req PlaceRequest) (PlaceResult, error) {
	return e.apply(req.Caller, req.X, req.Y, req.Color, req.Paid, req.Now, false)
}

// LockPixel validates and applies a lock purchase. Validation and heat rules
// match PlacePixel; the required price is the pixel price times the lock
// multiplier, and on success the pixel is locked for the configured duration.
func (e *Engine) LockPixel(req LockRequest) (LockResult, error) {
	result, err := e.apply(req.Caller, req.X, req.Y, req.Color, req.Paid, req.Now, true)
	if err != nil {
		return LockResult{}, err
	}
	return LockResult{
		PlaceResult: result,
		LockedUntil: req.Now.Add(e.cfg.LockDuration),
	}, nil
}

// apply runs the shared validate-then-mutate sequence for placements and
// locks. The per-user mutex is acquired before the pixel shard mutex; the
// ordering is fixed so concurrent callers cannot deadlock.
func (e *Engine) apply(caller string, x, y int, color uint32, paid decimal.Decimal, now time.Time, lock bool) (PlaceResult, error) {
	if err := validateCoordinates(x, y); err != nil {
		return PlaceResult{}, err
	}
	if err := validateColor(color); err != nil {
		return PlaceResult{}, err
	}
	if err := ledger.ValidateAmount(paid); err != nil {
		return PlaceResult{}, err
	}

	u := e.user(caller)
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.lastAction.IsZero() && now.Before(u.lastAction.Add(e.cfg.UserCooldown)) {
		return PlaceResult{}, ErrUserOnCooldown
	}

	coord := Coord{X: x, Y: y}
	shard := e.shard(coord.Key())
	shard.mu.Lock()
	defer shard.mu.Unlock()

	px := shard.pixels[coord.Key()]
	heat := e.currentHeat(px, now)

	if px != nil && px.locked && now.Before(px.lockedUntil) {
		return PlaceResult{}, ErrPixelLocked
	}

	required := e.priceForHeat(heat)
	if lock {
		required = required.Mul(decimal.NewFromInt(e.cfg.LockMultiplier))
	}
	if paid.LessThan(required) {
		return PlaceResult{}, ErrPaymentInsufficient
	}

	newHeat := heat + 1
	if newHeat > MaxHeat {
		newHeat = MaxHeat
	}
	first := heat == 0

	if px == nil {
		px = &pixel{}
		shard.pixels[coord.Key()] = px
	}
	px.owner = caller
	px.color = color
	px.heat = newHeat
	px.lastPlaced = now
	if lock {
		px.locked = true
		px.lockedUntil = now.Add(e.cfg.LockDuration)
	} else {
		px.locked = false
		px.lockedUntil = time.Time{}
	}

	u.lastAction = now
	if first {
		e.placed.Add(1)
	}

	projectShare, poolShare := ledger.HalfSplit(required)
	return PlaceResult{
		Coord:          coord,
		Owner:          caller,
		Color:          color,
		NewHeat:        newHeat,
		PricePaid:      required,
		ProjectShare:   projectShare,
		PoolShare:      poolShare,
		FirstPlacement: first,
		PlacedAt:       now,
	}, nil
}
