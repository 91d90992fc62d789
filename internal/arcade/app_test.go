package arcade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/chroma"
	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/fountain"
	"github.com/pixelfount/arcade/internal/ledger"
	"github.com/pixelfount/arcade/internal/storage/sqlite"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var genesis = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

type transfer struct {
	to     ledger.Wallet
	amount decimal.Decimal
}

type fakeTreasury struct {
	transfers []transfer
	err       error
}

func (f *fakeTreasury) Transfer(_ context.Context, to ledger.Wallet, amount decimal.Decimal) error {
	if f.err != nil {
		return f.err
	}
	f.transfers = append(f.transfers, transfer{to: to, amount: amount})
	return nil
}

type testApp struct {
	*App
	now      *time.Time
	treasury *fakeTreasury
	events   []event.Event
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	now := genesis
	ta := &testApp{now: &now, treasury: &fakeTreasury{}}
	app, err := New(DefaultConfig("wallet-project"), store,
		WithClock(func() time.Time { return *ta.now }),
		WithTreasury(ta.treasury),
		WithSink(event.SinkFunc(func(evt event.Event) { ta.events = append(ta.events, evt) })),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ta.App = app
	return ta
}

func (ta *testApp) advance(d time.Duration) {
	*ta.now = ta.now.Add(d)
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(DefaultConfig("wallet-project"), nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestConfigValidateRequiresProjectWallet(t *testing.T) {
	cfg := DefaultConfig("")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing project wallet")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("PIXELFOUNT_ARCADE_PROJECT_WALLET", "wallet-project")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if !cfg.Canvas.BasePrice.Equal(d("100000000000000")) {
		t.Fatalf("base price = %s", cfg.Canvas.BasePrice)
	}
	if !cfg.Lottery.EntryFee.Equal(d("1000000000000000")) {
		t.Fatalf("entry fee = %s", cfg.Lottery.EntryFee)
	}
	if cfg.Canvas.LockMultiplier != 50 || cfg.Lottery.PlatformFeePercent != 5 || cfg.Lottery.WinnerPercent != 85 {
		t.Fatalf("constants = %+v", cfg)
	}
	if cfg.Canvas.UserCooldown != 60*time.Second || cfg.Lottery.RoundDuration != 24*time.Hour {
		t.Fatalf("durations = %+v", cfg)
	}
}

func TestConfigFromEnvRejectsBadAmounts(t *testing.T) {
	t.Setenv("PIXELFOUNT_ARCADE_PROJECT_WALLET", "wallet-project")
	t.Setenv("PIXELFOUNT_ARCADE_BASE_PRICE", "not-a-number")

	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for unparseable base price")
	}
}

func TestPlacePixelRoutesFundsAndJournals(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	out, err := ta.PlacePixel(ctx, PlacePixelInput{Caller: "alice", X: 10, Y: 20, Color: 0xFF0000, Paid: d("100000000000000")})
	if err != nil {
		t.Fatalf("PlacePixel: %v", err)
	}

	if len(out.Obligations) != 1 {
		t.Fatalf("got %d obligations, want 1", len(out.Obligations))
	}
	o := out.Obligations[0]
	if o.To != "wallet-project" || !o.Amount.Equal(d("50000000000000")) || o.Memo != "project-share" {
		t.Fatalf("obligation = %+v", o)
	}
	if len(ta.treasury.transfers) != 1 || !ta.treasury.transfers[0].amount.Equal(d("50000000000000")) {
		t.Fatalf("transfers = %+v", ta.treasury.transfers)
	}

	// The pool half landed in the lottery and was recorded as an external fee.
	round := ta.CurrentRound()
	if !round.ChromaFees.Equal(d("50000000000000")) {
		t.Fatalf("chroma fees = %s", round.ChromaFees)
	}
	fees, err := ta.RoundFees(ctx, round.ID)
	if err != nil {
		t.Fatalf("RoundFees: %v", err)
	}
	if len(fees) != 1 || !fees[0].Amount.Equal(d("50000000000000")) || fees[0].Source != "chroma" {
		t.Fatalf("fees = %+v", fees)
	}

	events, err := ta.Events(ctx, event.GameChroma, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Type != event.TypePixelChanged || events[0].Seq != 1 {
		t.Fatalf("journal = %+v", events)
	}
	if len(ta.events) != 1 || ta.events[0].Seq != 1 {
		t.Fatalf("sink = %+v", ta.events)
	}
}

func TestPlacePixelErrorPassthrough(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.PlacePixel(context.Background(), PlacePixelInput{Caller: "alice", X: -1, Y: 0, Paid: d("100000000000000")})
	if !errors.Is(err, chroma.ErrCoordinatesInvalid) {
		t.Fatalf("got %v, want ErrCoordinatesInvalid", err)
	}

	// Nothing was journaled or transferred for the rejected action.
	events, err := ta.Events(context.Background(), event.GameChroma, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 0 || len(ta.treasury.transfers) != 0 {
		t.Fatalf("rejected action left traces: %d events, %d transfers", len(events), len(ta.treasury.transfers))
	}
}

func TestLockPixelJournalsBothEvents(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	price, err := ta.LockPrice(15, 15)
	if err != nil {
		t.Fatalf("LockPrice: %v", err)
	}
	out, err := ta.LockPixel(ctx, LockPixelInput{Caller: "alice", X: 15, Y: 15, Color: 0x00FF00, Paid: price})
	if err != nil {
		t.Fatalf("LockPixel: %v", err)
	}
	if !out.Result.LockedUntil.Equal(genesis.Add(24 * time.Hour)) {
		t.Fatalf("LockedUntil = %s", out.Result.LockedUntil)
	}

	events, err := ta.Events(ctx, event.GameChroma, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != event.TypePixelChanged || events[1].Type != event.TypePixelLocked {
		t.Fatalf("event types = %s, %s", events[0].Type, events[1].Type)
	}

	state, err := ta.Pixel(15, 15)
	if err != nil {
		t.Fatalf("Pixel: %v", err)
	}
	if !state.Locked {
		t.Fatal("pixel should be locked")
	}
}

func TestTossCoinRoutesPlatformFee(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	out, err := ta.TossCoin(ctx, TossCoinInput{Caller: "alice", Paid: d("1000000000000000")})
	if err != nil {
		t.Fatalf("TossCoin: %v", err)
	}
	if len(out.Obligations) != 1 {
		t.Fatalf("got %d obligations, want 1", len(out.Obligations))
	}
	o := out.Obligations[0]
	if o.To != "wallet-project" || !o.Amount.Equal(d("50000000000000")) || o.Memo != "platform-fee" {
		t.Fatalf("obligation = %+v", o)
	}

	events, err := ta.Events(ctx, event.GameFountain, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Type != event.TypeCoinTossed || events[0].ActorID != "alice" {
		t.Fatalf("journal = %+v", events)
	}

	_, err = ta.TossCoin(ctx, TossCoinInput{Caller: "bob", Paid: d("1")})
	if !errors.Is(err, fountain.ErrEntryFeeInvalid) {
		t.Fatalf("got %v, want ErrEntryFeeInvalid", err)
	}
}

func TestEndRoundPaysWinnerAndFee(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	if _, err := ta.TossCoin(ctx, TossCoinInput{Caller: "alice", Paid: d("1000000000000000")}); err != nil {
		t.Fatalf("TossCoin: %v", err)
	}
	ta.treasury.transfers = nil

	ta.advance(24 * time.Hour)
	out, err := ta.EndRound(ctx)
	if err != nil {
		t.Fatalf("EndRound: %v", err)
	}
	if out.Resolution.Round.Winner != "alice" {
		t.Fatalf("winner = %q", out.Resolution.Round.Winner)
	}

	// Pool 950000000000000: 5% fee, then 85% of the remainder to the winner.
	if len(out.Obligations) != 2 {
		t.Fatalf("got %d obligations, want 2", len(out.Obligations))
	}
	if out.Obligations[0].Memo != "winner-prize" || !out.Obligations[0].Amount.Equal(d("767125000000000")) {
		t.Fatalf("winner obligation = %+v", out.Obligations[0])
	}
	if out.Obligations[1].Memo != "resolution-fee" || !out.Obligations[1].Amount.Equal(d("47500000000000")) {
		t.Fatalf("fee obligation = %+v", out.Obligations[1])
	}
	if len(ta.treasury.transfers) != 2 || ta.treasury.transfers[0].to != "alice" {
		t.Fatalf("transfers = %+v", ta.treasury.transfers)
	}

	events, err := ta.Events(ctx, event.GameFountain, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	// coin.tossed, then the resolution pair.
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[1].Type != event.TypeWinnerSelected || events[2].Type != event.TypeRoundStarted {
		t.Fatalf("event types = %s, %s", events[1].Type, events[2].Type)
	}

	// The new round inherits the rollover as its starting pool.
	if !ta.CurrentRound().PrizePool.Equal(d("135375000000000")) {
		t.Fatalf("next pool = %s", ta.CurrentRound().PrizePool)
	}
}

func TestEndRoundEarly(t *testing.T) {
	ta := newTestApp(t)

	if _, err := ta.EndRound(context.Background()); !errors.Is(err, fountain.ErrRoundNotEnded) {
		t.Fatalf("got %v, want ErrRoundNotEnded", err)
	}
}

func TestTossCoinResolvesOverdueRound(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	if _, err := ta.TossCoin(ctx, TossCoinInput{Caller: "alice", Paid: d("1000000000000000")}); err != nil {
		t.Fatalf("TossCoin: %v", err)
	}

	ta.advance(25 * time.Hour)
	out, err := ta.TossCoin(ctx, TossCoinInput{Caller: "bob", Paid: d("1000000000000000")})
	if err != nil {
		t.Fatalf("TossCoin: %v", err)
	}
	if out.Resolution == nil || out.Resolution.Round.ID != 1 {
		t.Fatalf("resolution = %+v", out.Resolution)
	}
	if out.Result.RoundID != 2 {
		t.Fatalf("entry round = %d, want 2", out.Result.RoundID)
	}

	events, err := ta.Events(ctx, event.GameFountain, 0, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	// toss 1, winner, round start, toss 2 — resolution precedes the new entry.
	want := []event.Type{event.TypeCoinTossed, event.TypeWinnerSelected, event.TypeRoundStarted, event.TypeCoinTossed}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Fatalf("event %d type = %s, want %s", i, events[i].Type, typ)
		}
	}
}

func TestTreasuryFailureSurfaces(t *testing.T) {
	ta := newTestApp(t)
	ta.treasury.err = errors.New("bank offline")

	_, err := ta.PlacePixel(context.Background(), PlacePixelInput{Caller: "alice", X: 0, Y: 0, Color: 1, Paid: d("100000000000000")})
	if err == nil || !errors.Is(err, ta.treasury.err) {
		t.Fatalf("got %v, want the treasury error", err)
	}
}

func TestCanvasStatsThroughApp(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	if _, err := ta.PlacePixel(ctx, PlacePixelInput{Caller: "alice", X: 1, Y: 1, Color: 2, Paid: d("100000000000000")}); err != nil {
		t.Fatalf("PlacePixel: %v", err)
	}
	if got := ta.CanvasStats().TotalPixelsPlaced; got != 1 {
		t.Fatalf("placed = %d, want 1", got)
	}
}
