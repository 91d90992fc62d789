// Package chroma implements the canvas economy: a 3000x3000 pixel grid with
// heat-based decaying prices, premium time-locks, and per-user cooldowns.
//
// The engine is a pure in-memory state machine. It validates a submitted
// action, mutates pixel state atomically, and reports the payment split the
// caller must route; it never moves funds and never performs I/O.
package chroma

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/ledger"
	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
)

const (
	// CanvasSize is the width and height of the canvas in pixels.
	CanvasSize = 3000
	// MaxHeat is the cap on a pixel's heat level.
	MaxHeat = 10
	// MaxColor is the largest valid 24-bit RGB value.
	MaxColor = 0xFFFFFF

	shardCount = 256
)

// Heat prices scale by 3/2 per level, floored to whole wei at each step.
const (
	heatScaleNum = 3
	heatScaleDen = 2
)

// Config holds the canvas economy constants.
type Config struct {
	// BasePrice is the wei price of a heat-0 pixel.
	BasePrice decimal.Decimal
	// HeatDecayPeriod is the elapsed time that cools a pixel by one heat level.
	HeatDecayPeriod time.Duration
	// UserCooldown is the minimum time between any two canvas actions by one user.
	UserCooldown time.Duration
	// LockDuration is how long a purchased lock protects a pixel.
	LockDuration time.Duration
	// LockMultiplier scales the pixel price into the lock price.
	LockMultiplier int64
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if !c.BasePrice.IsPositive() || !ledger.IsIntegral(c.BasePrice) {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "base price must be a positive integer", map[string]string{"field": "BasePrice"})
	}
	if c.HeatDecayPeriod <= 0 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "heat decay period must be positive", map[string]string{"field": "HeatDecayPeriod"})
	}
	if c.UserCooldown <= 0 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "user cooldown must be positive", map[string]string{"field": "UserCooldown"})
	}
	if c.LockDuration <= 0 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "lock duration must be positive", map[string]string{"field": "LockDuration"})
	}
	if c.LockMultiplier <= 0 {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "lock multiplier must be positive", map[string]string{"field": "LockMultiplier"})
	}
	return nil
}

// Engine owns all pixel, cooldown, and stats state for the canvas.
//
// Pixel state is partitioned across a sharded lock table so concurrent
// placements on distinct coordinates do not contend. Per-user cooldown checks
// run under a per-user mutex acquired before the pixel shard, making the
// read-decide-write cooldown sequence atomic per user.
type Engine struct {
	cfg    Config
	shards [shardCount]pixelShard

	usersMu sync.Mutex
	users   map[string]*userState

	placed atomic.Uint64
}

type pixelShard struct {
	mu     sync.Mutex
	pixels map[uint32]*pixel
}

// pixel is the stored (possibly stale) state; heat must be decayed on read.
type pixel struct {
	owner       string
	color       uint32
	heat        int
	lastPlaced  time.Time
	locked      bool
	lockedUntil time.Time
}

type userState struct {
	mu         sync.Mutex
	lastAction time.Time
}

// New creates a canvas engine from a validated configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		users: make(map[string]*userState),
	}
	for i := range e.shards {
		e.shards[i].pixels = make(map[uint32]*pixel)
	}
	return e, nil
}

// Stats reports canvas-wide counters.
type Stats struct {
	// TotalPixelsPlaced counts placements that landed on a cold (heat 0) pixel.
	TotalPixelsPlaced uint64
}

// Stats returns the canvas counters.
func (e *Engine) Stats() Stats {
	return Stats{TotalPixelsPlaced: e.placed.Load()}
}

func (e *Engine) shard(key uint32) *pixelShard {
	return &e.shards[key%shardCount]
}

func (e *Engine) user(id string) *userState {
	e.usersMu.Lock()
	defer e.usersMu.Unlock()
	u, ok := e.users[id]
	if !ok {
		u = &userState{}
		e.users[id] = u
	}
	return u
}

// currentHeat returns the decayed heat of a stored pixel as of now.
// A nil pixel has never been placed and is heat 0.
func (e *Engine) currentHeat(px *pixel, now time.Time) int {
	if px == nil {
		return 0
	}
	elapsed := now.Sub(px.lastPlaced)
	if elapsed < 0 {
		return px.heat
	}
	periods := int(elapsed / e.cfg.HeatDecayPeriod)
	heat := px.heat - periods
	if heat < 0 {
		return 0
	}
	return heat
}

// priceForHeat applies the 3/2 scaling once per heat level, flooring to whole
// wei at each step the way the source ledger did.
func (e *Engine) priceForHeat(heat int) decimal.Decimal {
	price := e.cfg.BasePrice
	for i := 0; i < heat; i++ {
		price = ledger.MulDivFloor(price, heatScaleNum, heatScaleDen)
	}
	return price
}

func validateCoordinates(x, y int) error {
	if x < 0 || x >= CanvasSize || y < 0 || y >= CanvasSize {
		return ErrCoordinatesInvalid
	}
	return nil
}

func validateColor(color uint32) error {
	if color > MaxColor {
		return ErrColorInvalid
	}
	return nil
}
