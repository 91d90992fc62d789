// Package arcadectl implements the arcade maintenance command: journal
// inspection, round status, fee audits, and a deterministic in-memory
// simulation of the game economy.
package arcadectl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/arcade"
	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/ledger"
	"github.com/pixelfount/arcade/internal/storage/sqlite"
)

// Config holds arcadectl command configuration.
type Config struct {
	DBPath        string        `env:"PIXELFOUNT_ARCADE_DB_PATH"`
	Timeout       time.Duration `env:"PIXELFOUNT_ARCADE_CTL_TIMEOUT" envDefault:"1m"`
	ProjectWallet string        `env:"PIXELFOUNT_ARCADE_PROJECT_WALLET"`

	Journal    bool
	Game       string
	SinceSeq   uint64
	Limit      int
	Status     bool
	Fees       bool
	RoundID    uint64
	Simulate   bool
	SimPlayers int
	SimRounds  int
	JSONOutput bool
}

type envConfig struct {
	DBPath        string        `env:"PIXELFOUNT_ARCADE_DB_PATH"`
	Timeout       time.Duration `env:"PIXELFOUNT_ARCADE_CTL_TIMEOUT" envDefault:"1m"`
	ProjectWallet string        `env:"PIXELFOUNT_ARCADE_PROJECT_WALLET"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		DBPath:        envCfg.DBPath,
		Timeout:       envCfg.Timeout,
		ProjectWallet: envCfg.ProjectWallet,
		Limit:         50,
		SimPlayers:    5,
		SimRounds:     3,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "arcade.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to arcade sqlite database (default: PIXELFOUNT_ARCADE_DB_PATH or data/arcade.db)")
	fs.BoolVar(&cfg.Journal, "journal", false, "dump journaled events for a game")
	fs.StringVar(&cfg.Game, "game", string(event.GameChroma), "game journal to read (chroma|fountain)")
	fs.Uint64Var(&cfg.SinceSeq, "since-seq", 0, "list events with sequence greater than this")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "max events to print (0 = no limit)")
	fs.BoolVar(&cfg.Status, "status", false, "report the latest lottery round seen in the journal")
	fs.BoolVar(&cfg.Fees, "fees", false, "list external fees credited to a round")
	fs.Uint64Var(&cfg.RoundID, "round-id", 1, "round id for -fees")
	fs.BoolVar(&cfg.Simulate, "simulate", false, "run a deterministic in-memory game simulation")
	fs.IntVar(&cfg.SimPlayers, "sim-players", cfg.SimPlayers, "players per simulated round")
	fs.IntVar(&cfg.SimRounds, "sim-rounds", cfg.SimRounds, "lottery rounds to simulate")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the arcadectl command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	switch {
	case cfg.Simulate:
		return runSimulation(ctx, cfg, out)
	case cfg.Journal:
		return dumpJournal(ctx, cfg, out)
	case cfg.Status:
		return dumpStatus(ctx, cfg, out)
	case cfg.Fees:
		return dumpFees(ctx, cfg, out)
	default:
		return errors.New("nothing to do: pass -journal, -status, -fees, or -simulate")
	}
}

func openStore(cfg Config) (*sqlite.Store, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func dumpJournal(ctx context.Context, cfg Config, out io.Writer) error {
	game := event.Game(cfg.Game)
	if game != event.GameChroma && game != event.GameFountain {
		return fmt.Errorf("unknown game %q", cfg.Game)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.ListEvents(ctx, game, cfg.SinceSeq, cfg.Limit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	if cfg.JSONOutput {
		type jsonEvent struct {
			Game      event.Game      `json:"game"`
			Seq       uint64          `json:"seq"`
			Timestamp time.Time       `json:"timestamp"`
			Type      event.Type      `json:"type"`
			ActorID   string          `json:"actor_id,omitempty"`
			EntityID  string          `json:"entity_id"`
			Payload   json.RawMessage `json:"payload,omitempty"`
		}
		enc := json.NewEncoder(out)
		for _, evt := range events {
			if err := enc.Encode(jsonEvent{
				Game:      evt.Game,
				Seq:       evt.Seq,
				Timestamp: evt.Timestamp,
				Type:      evt.Type,
				ActorID:   evt.ActorID,
				EntityID:  evt.EntityID,
				Payload:   json.RawMessage(evt.PayloadJSON),
			}); err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
		}
		return nil
	}

	for _, evt := range events {
		fmt.Fprintf(out, "%s seq=%d %s actor=%s entity=%s %s\n",
			evt.Timestamp.Format(time.RFC3339), evt.Seq, evt.Type, evt.ActorID, evt.EntityID, evt.PayloadJSON)
	}
	fmt.Fprintf(out, "%d events\n", len(events))
	return nil
}

// dumpStatus reconstructs the latest lottery round from the journal: the most
// recent round start, its entry count, and the external fees credited to it.
func dumpStatus(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.ListEvents(ctx, event.GameFountain, 0, 0)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "no lottery activity journaled")
		return nil
	}

	var (
		started   event.RoundStarted
		haveRound bool
		tosses    int
	)
	for _, evt := range events {
		switch evt.Type {
		case event.TypeRoundStarted:
			if err := json.Unmarshal(evt.PayloadJSON, &started); err != nil {
				return fmt.Errorf("decode round start: %w", err)
			}
			haveRound = true
			tosses = 0
		case event.TypeCoinTossed:
			tosses++
		}
	}
	if !haveRound {
		// Journal began mid-round; round 1 starts are implicit at genesis.
		started.RoundID = 1
	}

	fees, err := store.ListRoundFees(ctx, started.RoundID)
	if err != nil {
		return fmt.Errorf("list round fees: %w", err)
	}
	feeTotal := decimal.Zero
	for _, fee := range fees {
		feeTotal = feeTotal.Add(fee.Amount)
	}

	fmt.Fprintf(out, "round %d: entries=%d starting_pool=%s external_fees=%s\n",
		started.RoundID, tosses, started.StartingPool, feeTotal)
	if haveRound {
		fmt.Fprintf(out, "started %s, ends %s\n",
			started.StartTime.Format(time.RFC3339), started.EndTime.Format(time.RFC3339))
	}
	return nil
}

func dumpFees(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fees, err := store.ListRoundFees(ctx, cfg.RoundID)
	if err != nil {
		return fmt.Errorf("list round fees: %w", err)
	}

	total := decimal.Zero
	for _, fee := range fees {
		total = total.Add(fee.Amount)
		fmt.Fprintf(out, "%s round=%d source=%s amount=%s\n",
			fee.Timestamp.Format(time.RFC3339), fee.RoundID, fee.Source, fee.Amount)
	}
	fmt.Fprintf(out, "round %d: %d fees totaling %s\n", cfg.RoundID, len(fees), total)
	return nil
}

// runSimulation drives a full arcade through several lottery rounds with a
// synthetic clock and reports the money flow. Everything stays in memory, so
// it is safe to run anywhere.
func runSimulation(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.SimPlayers < 1 || cfg.SimRounds < 1 {
		return errors.New("simulation needs at least one player and one round")
	}

	store, err := sqlite.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open simulation store: %w", err)
	}
	defer store.Close()

	wallet := cfg.ProjectWallet
	if wallet == "" {
		wallet = "sim-project-wallet"
	}
	appCfg := arcade.DefaultConfig(ledger.Wallet(wallet))

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	app, err := arcade.New(appCfg, store, arcade.WithClock(func() time.Time { return now }))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	for round := 1; round <= cfg.SimRounds; round++ {
		for p := 0; p < cfg.SimPlayers; p++ {
			player := fmt.Sprintf("player-%d", p)

			price, err := app.PixelPrice(p, round)
			if err != nil {
				return fmt.Errorf("quote pixel: %w", err)
			}
			if _, err := app.PlacePixel(ctx, arcade.PlacePixelInput{
				Caller: player, X: p, Y: round, Color: uint32(round * 1000), Paid: price,
			}); err != nil {
				return fmt.Errorf("place pixel: %w", err)
			}

			now = now.Add(appCfg.Canvas.UserCooldown + time.Second)
			if _, err := app.TossCoin(ctx, arcade.TossCoinInput{Caller: player, Paid: appCfg.Lottery.EntryFee}); err != nil {
				return fmt.Errorf("toss coin: %w", err)
			}
			now = now.Add(time.Minute)
		}

		info := app.CurrentRound()
		now = info.EndTime.Add(time.Second)
		res, err := app.EndRound(ctx)
		if err != nil {
			return fmt.Errorf("end round %d: %w", round, err)
		}
		r := res.Resolution.Round
		fmt.Fprintf(out, "round %d: participants=%d pool=%s fee=%s winner=%s prize=%s rollover=%s\n",
			r.ID, r.Participants, r.PrizePool, r.PlatformFee, r.Winner, r.WinnerAmount, r.RolloverAmount)
	}

	stats := app.CanvasStats()
	fmt.Fprintf(out, "canvas: %d pixels placed\n", stats.TotalPixelsPlaced)

	chromaEvents, err := store.ListEvents(ctx, event.GameChroma, 0, 0)
	if err != nil {
		return fmt.Errorf("list chroma events: %w", err)
	}
	fountainEvents, err := store.ListEvents(ctx, event.GameFountain, 0, 0)
	if err != nil {
		return fmt.Errorf("list fountain events: %w", err)
	}
	fmt.Fprintf(out, "journal: %d chroma events, %d fountain events\n", len(chromaEvents), len(fountainEvents))
	return nil
}
