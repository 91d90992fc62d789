// Package arcade wires the canvas and lottery engines to persistence,
// telemetry, and fund routing. The engines stay pure; everything that
// journals, traces, or moves money happens here.
package arcade

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pixelfount/arcade/internal/chroma"
	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/fountain"
	"github.com/pixelfount/arcade/internal/ledger"
	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
	"github.com/pixelfount/arcade/internal/storage"
	"github.com/pixelfount/arcade/internal/telemetry"
)

// feeSourceChroma labels canvas pool shares in the fee ledger.
const feeSourceChroma = "chroma"

// App is the arcade application: both engines plus the journal, fee ledger,
// telemetry emitter, and optional treasury.
type App struct {
	cfg      Config
	canvas   *chroma.Engine
	lottery  *fountain.Engine
	store    storage.Store
	sink     event.Sink
	treasury ledger.Treasury
	emitter  *telemetry.Emitter
	tracer   trace.Tracer
	clock    func() time.Time
}

// Option configures optional App collaborators.
type Option func(*App)

// WithClock overrides the time source. Tests use this to drive heat decay,
// cooldowns, and round expiry deterministically.
func WithClock(clock func() time.Time) Option {
	return func(a *App) { a.clock = clock }
}

// WithSink registers a delivery target for journaled events.
func WithSink(sink event.Sink) Option {
	return func(a *App) { a.sink = sink }
}

// WithTreasury enables fund execution. Without it the App only reports
// obligations and the caller settles them out of band.
func WithTreasury(t ledger.Treasury) Option {
	return func(a *App) { a.treasury = t }
}

// New builds the App, starting lottery round 1 at the current clock time.
// The store is required: every accepted action journals its events.
func New(cfg Config, store storage.Store, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeConfigInvalid, "store is required", map[string]string{"field": "store"})
	}

	a := &App{
		cfg:    cfg,
		store:  store,
		tracer: otel.Tracer("github.com/pixelfount/arcade/internal/arcade"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	canvas, err := chroma.New(cfg.Canvas)
	if err != nil {
		return nil, err
	}
	lottery, err := fountain.New(cfg.Lottery, a.clock().UTC())
	if err != nil {
		return nil, err
	}
	a.canvas = canvas
	a.lottery = lottery
	a.emitter = telemetry.NewEmitter(store)
	return a, nil
}

// Close releases the underlying store.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// PlacePixelInput is a pixel placement submission.
type PlacePixelInput struct {
	Caller string
	X      int
	Y      int
	Color  uint32
	Paid   decimal.Decimal
}

// PlacePixelOutput reports the applied placement, the fund movements the
// caller owes, and any lottery round resolution the pool-share credit
// triggered.
type PlacePixelOutput struct {
	Result      chroma.PlaceResult
	Obligations []ledger.Obligation
	Resolution  *fountain.Resolution
}

// PlacePixel applies a placement, forwards the pool share into the lottery,
// journals the pixel change, and computes the project-share obligation.
func (a *App) PlacePixel(ctx context.Context, in PlacePixelInput) (PlacePixelOutput, error) {
	ctx, span := a.tracer.Start(ctx, "arcade.PlacePixel")
	defer span.End()

	now := a.clock().UTC()
	result, err := a.canvas.PlacePixel(chroma.PlaceRequest{
		Caller: in.Caller,
		X:      in.X,
		Y:      in.Y,
		Color:  in.Color,
		Paid:   in.Paid,
		Now:    now,
	})
	if err != nil {
		span.RecordError(err)
		return PlacePixelOutput{}, err
	}

	resolution, err := a.creditPoolShare(ctx, result.PoolShare, now)
	if err != nil {
		span.RecordError(err)
		return PlacePixelOutput{}, err
	}

	payload, err := event.MarshalPayload(event.PixelChanged{
		X:             result.Coord.X,
		Y:             result.Coord.Y,
		Owner:         result.Owner,
		Color:         result.Color,
		NewHeat:       result.NewHeat,
		AmountCharged: result.PricePaid,
		Locked:        false,
		PlacedAt:      result.PlacedAt,
	})
	if err != nil {
		return PlacePixelOutput{}, fmt.Errorf("marshal pixel payload: %w", err)
	}
	if err := a.journal(ctx, event.Event{
		Game:        event.GameChroma,
		Timestamp:   now,
		Type:        event.TypePixelChanged,
		ActorID:     in.Caller,
		EntityID:    result.Coord.String(),
		PayloadJSON: payload,
	}); err != nil {
		return PlacePixelOutput{}, err
	}

	obligations := []ledger.Obligation{
		{To: a.cfg.ProjectWallet, Amount: result.ProjectShare, Memo: "project-share"},
	}
	obligations = append(obligations, a.resolutionObligations(resolution)...)
	if err := a.settle(ctx, obligations); err != nil {
		return PlacePixelOutput{}, err
	}

	_ = a.emitter.Emit(ctx, telemetry.SeverityInfo, "place_pixel",
		fmt.Sprintf("pixel %s heat %d charged %s", result.Coord.String(), result.NewHeat, result.PricePaid))

	return PlacePixelOutput{Result: result, Obligations: obligations, Resolution: resolution}, nil
}

// LockPixelInput is a pixel lock submission.
type LockPixelInput struct {
	Caller string
	X      int
	Y      int
	Color  uint32
	Paid   decimal.Decimal
}

// LockPixelOutput reports the applied lock and its fund movements.
type LockPixelOutput struct {
	Result      chroma.LockResult
	Obligations []ledger.Obligation
	Resolution  *fountain.Resolution
}

// LockPixel applies a lock purchase. A lock is also a placement, so it
// journals both a pixel change and a pixel lock.
func (a *App) LockPixel(ctx context.Context, in LockPixelInput) (LockPixelOutput, error) {
	ctx, span := a.tracer.Start(ctx, "arcade.LockPixel")
	defer span.End()

	now := a.clock().UTC()
	result, err := a.canvas.LockPixel(chroma.LockRequest{
		Caller: in.Caller,
		X:      in.X,
		Y:      in.Y,
		Color:  in.Color,
		Paid:   in.Paid,
		Now:    now,
	})
	if err != nil {
		span.RecordError(err)
		return LockPixelOutput{}, err
	}

	resolution, err := a.creditPoolShare(ctx, result.PoolShare, now)
	if err != nil {
		span.RecordError(err)
		return LockPixelOutput{}, err
	}

	changed, err := event.MarshalPayload(event.PixelChanged{
		X:             result.Coord.X,
		Y:             result.Coord.Y,
		Owner:         result.Owner,
		Color:         result.Color,
		NewHeat:       result.NewHeat,
		AmountCharged: result.PricePaid,
		Locked:        true,
		PlacedAt:      result.PlacedAt,
	})
	if err != nil {
		return LockPixelOutput{}, fmt.Errorf("marshal pixel payload: %w", err)
	}
	locked, err := event.MarshalPayload(event.PixelLocked{
		X:             result.Coord.X,
		Y:             result.Coord.Y,
		LockedBy:      result.Owner,
		AmountCharged: result.PricePaid,
		LockedUntil:   result.LockedUntil,
	})
	if err != nil {
		return LockPixelOutput{}, fmt.Errorf("marshal lock payload: %w", err)
	}
	for _, evt := range []event.Event{
		{
			Game:        event.GameChroma,
			Timestamp:   now,
			Type:        event.TypePixelChanged,
			ActorID:     in.Caller,
			EntityID:    result.Coord.String(),
			PayloadJSON: changed,
		},
		{
			Game:        event.GameChroma,
			Timestamp:   now,
			Type:        event.TypePixelLocked,
			ActorID:     in.Caller,
			EntityID:    result.Coord.String(),
			PayloadJSON: locked,
		},
	} {
		if err := a.journal(ctx, evt); err != nil {
			return LockPixelOutput{}, err
		}
	}

	obligations := []ledger.Obligation{
		{To: a.cfg.ProjectWallet, Amount: result.ProjectShare, Memo: "project-share"},
	}
	obligations = append(obligations, a.resolutionObligations(resolution)...)
	if err := a.settle(ctx, obligations); err != nil {
		return LockPixelOutput{}, err
	}

	_ = a.emitter.Emit(ctx, telemetry.SeverityInfo, "lock_pixel",
		fmt.Sprintf("pixel %s locked until %s charged %s", result.Coord.String(), result.LockedUntil.Format(time.RFC3339), result.PricePaid))

	return LockPixelOutput{Result: result, Obligations: obligations, Resolution: resolution}, nil
}

// TossCoinInput is a lottery entry submission.
type TossCoinInput struct {
	Caller string
	Paid   decimal.Decimal
}

// TossCoinOutput reports the accepted entry and its fund movements.
type TossCoinOutput struct {
	Result      fountain.TossResult
	Obligations []ledger.Obligation
	Resolution  *fountain.Resolution
}

// TossCoin enters the caller into the current lottery round, resolving an
// overdue round first.
func (a *App) TossCoin(ctx context.Context, in TossCoinInput) (TossCoinOutput, error) {
	ctx, span := a.tracer.Start(ctx, "arcade.TossCoin")
	defer span.End()

	now := a.clock().UTC()
	result, err := a.lottery.TossCoin(in.Caller, in.Paid, now)
	if err != nil {
		span.RecordError(err)
		return TossCoinOutput{}, err
	}

	// Resolution events precede the toss event: the overdue round resolved
	// before this entry landed in its successor.
	if err := a.journalResolution(ctx, result.Resolved, now); err != nil {
		return TossCoinOutput{}, err
	}

	payload, err := event.MarshalPayload(event.CoinTossed{
		RoundID:     result.RoundID,
		Caller:      in.Caller,
		EntryFee:    in.Paid,
		PlatformFee: result.PlatformFee,
		NewPool:     result.NewPool,
	})
	if err != nil {
		return TossCoinOutput{}, fmt.Errorf("marshal toss payload: %w", err)
	}
	if err := a.journal(ctx, event.Event{
		Game:        event.GameFountain,
		Timestamp:   now,
		Type:        event.TypeCoinTossed,
		ActorID:     in.Caller,
		EntityID:    strconv.FormatUint(result.RoundID, 10),
		PayloadJSON: payload,
	}); err != nil {
		return TossCoinOutput{}, err
	}

	obligations := []ledger.Obligation{
		{To: a.cfg.ProjectWallet, Amount: result.PlatformFee, Memo: "platform-fee"},
	}
	obligations = append(obligations, a.resolutionObligations(result.Resolved)...)
	if err := a.settle(ctx, obligations); err != nil {
		return TossCoinOutput{}, err
	}

	_ = a.emitter.Emit(ctx, telemetry.SeverityInfo, "toss_coin",
		fmt.Sprintf("round %d pool %s", result.RoundID, result.NewPool))

	return TossCoinOutput{Result: result, Obligations: obligations, Resolution: result.Resolved}, nil
}

// EndRoundOutput reports an explicit round resolution and its fund movements.
type EndRoundOutput struct {
	Resolution  fountain.Resolution
	Obligations []ledger.Obligation
}

// EndRound resolves the current lottery round once its end time has passed.
func (a *App) EndRound(ctx context.Context) (EndRoundOutput, error) {
	ctx, span := a.tracer.Start(ctx, "arcade.EndRound")
	defer span.End()

	now := a.clock().UTC()
	resolution, err := a.lottery.EndRound(now)
	if err != nil {
		span.RecordError(err)
		return EndRoundOutput{}, err
	}

	if err := a.journalResolution(ctx, &resolution, now); err != nil {
		return EndRoundOutput{}, err
	}

	obligations := a.resolutionObligations(&resolution)
	if err := a.settle(ctx, obligations); err != nil {
		return EndRoundOutput{}, err
	}

	_ = a.emitter.Emit(ctx, telemetry.SeverityInfo, "end_round",
		fmt.Sprintf("round %d winner %q amount %s", resolution.Round.ID, resolution.Round.Winner, resolution.Round.WinnerAmount))

	return EndRoundOutput{Resolution: resolution, Obligations: obligations}, nil
}

// creditPoolShare forwards a canvas pool share into the lottery and records
// it in the fee ledger, journaling any resolution the credit triggered.
func (a *App) creditPoolShare(ctx context.Context, amount decimal.Decimal, now time.Time) (*fountain.Resolution, error) {
	received, err := a.lottery.ReceiveExternalFees(amount, now)
	if err != nil {
		return nil, err
	}
	if err := a.journalResolution(ctx, received.Resolved, now); err != nil {
		return nil, err
	}
	if err := a.store.RecordRoundFee(ctx, storage.RoundFee{
		RoundID:   received.RoundID,
		Amount:    amount,
		Source:    feeSourceChroma,
		Timestamp: now,
	}); err != nil {
		return nil, fmt.Errorf("record round fee: %w", err)
	}
	return received.Resolved, nil
}

// journalResolution records a round resolution as events: the winner of the
// closed round (skipped for empty rounds, which have none) and the start of
// its successor.
func (a *App) journalResolution(ctx context.Context, res *fountain.Resolution, now time.Time) error {
	if res == nil {
		return nil
	}

	if res.Round.Participants > 0 {
		payload, err := event.MarshalPayload(event.WinnerSelected{
			RoundID:        res.Round.ID,
			Winner:         res.Round.Winner,
			WinnerAmount:   res.Round.WinnerAmount,
			PlatformFee:    res.Round.PlatformFee,
			RolloverAmount: res.Round.RolloverAmount,
			Participants:   res.Round.Participants,
		})
		if err != nil {
			return fmt.Errorf("marshal winner payload: %w", err)
		}
		if err := a.journal(ctx, event.Event{
			Game:        event.GameFountain,
			Timestamp:   now,
			Type:        event.TypeWinnerSelected,
			EntityID:    strconv.FormatUint(res.Round.ID, 10),
			PayloadJSON: payload,
		}); err != nil {
			return err
		}
	}

	payload, err := event.MarshalPayload(event.RoundStarted{
		RoundID:      res.NextRound.ID,
		StartTime:    res.NextRound.StartTime,
		EndTime:      res.NextRound.EndTime,
		StartingPool: res.NextRound.PrizePool,
	})
	if err != nil {
		return fmt.Errorf("marshal round payload: %w", err)
	}
	return a.journal(ctx, event.Event{
		Game:        event.GameFountain,
		Timestamp:   now,
		Type:        event.TypeRoundStarted,
		EntityID:    strconv.FormatUint(res.NextRound.ID, 10),
		PayloadJSON: payload,
	})
}

// journal appends an event to the store and delivers it to the sink.
func (a *App) journal(ctx context.Context, evt event.Event) error {
	stored, err := a.store.AppendEvent(ctx, evt)
	if err != nil {
		_ = a.emitter.Emit(ctx, telemetry.SeverityError, "journal", err.Error())
		return fmt.Errorf("append event: %w", err)
	}
	if a.sink != nil {
		a.sink.Deliver(stored)
	}
	return nil
}

// settle executes obligations through the treasury when one is configured.
// Without a treasury the obligations are returned for out-of-band settlement.
func (a *App) settle(ctx context.Context, obligations []ledger.Obligation) error {
	if a.treasury == nil {
		return nil
	}
	for _, o := range obligations {
		if o.Amount.IsZero() || o.To.IsZero() {
			continue
		}
		if err := a.treasury.Transfer(ctx, o.To, o.Amount); err != nil {
			_ = a.emitter.Emit(ctx, telemetry.SeverityError, "settle",
				fmt.Sprintf("transfer %s to %s: %v", o.Amount, o.To, err))
			return fmt.Errorf("transfer %s to %s: %w", o.Amount, o.To, err)
		}
	}
	return nil
}

// resolutionObligations computes the payouts a resolution owes: the winner
// prize and the resolution platform fee, both deducted from the pool by the
// engine. Empty rounds resolve with neither.
func (a *App) resolutionObligations(res *fountain.Resolution) []ledger.Obligation {
	if res == nil || res.Round.Winner == "" {
		return nil
	}
	obligations := []ledger.Obligation{
		{To: ledger.Wallet(res.Round.Winner), Amount: res.Round.WinnerAmount, Memo: "winner-prize"},
	}
	if res.Round.PlatformFee.IsPositive() {
		obligations = append(obligations, ledger.Obligation{
			To:     a.cfg.ProjectWallet,
			Amount: res.Round.PlatformFee,
			Memo:   "resolution-fee",
		})
	}
	return obligations
}
