package arcadectl

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/storage"
	"github.com/pixelfount/arcade/internal/storage/sqlite"

	"github.com/shopspring/decimal"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("PIXELFOUNT_ARCADE_DB_PATH", "")
	t.Setenv("PIXELFOUNT_ARCADE_CTL_TIMEOUT", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "arcade.db") {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Limit != 50 || cfg.Game != "chroma" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Timeout != time.Minute {
		t.Fatalf("timeout = %s", cfg.Timeout)
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-journal", "-game", "fountain", "-since-seq", "3", "-limit", "10", "-json"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !cfg.Journal || cfg.Game != "fountain" || cfg.SinceSeq != 3 || cfg.Limit != 10 || !cfg.JSONOutput {
		t.Fatalf("parsed = %+v", cfg)
	}
}

func TestRunRequiresAction(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected error when no action was requested")
	}
}

func TestJournalDump(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "arcade.db")
	seedJournal(t, dbPath)

	var out bytes.Buffer
	cfg := Config{DBPath: dbPath, Journal: true, Game: "fountain", Limit: 10}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "coin.tossed") {
		t.Fatalf("output missing event type:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1 events") {
		t.Fatalf("output missing count:\n%s", out.String())
	}
}

func TestJournalDumpRejectsUnknownGame(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "arcade.db"), Journal: true, Game: "chess"}
	if err := Run(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error for unknown game")
	}
}

func TestFeesDump(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "arcade.db")
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = store.RecordRoundFee(context.Background(), storage.RoundFee{
		RoundID:   1,
		Amount:    decimal.RequireFromString("50000000000000"),
		Source:    "chroma",
		Timestamp: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RecordRoundFee: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var out bytes.Buffer
	cfg := Config{DBPath: dbPath, Fees: true, RoundID: 1}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "totaling 50000000000000") {
		t.Fatalf("output missing total:\n%s", out.String())
	}
}

func TestSimulation(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Simulate: true, SimPlayers: 3, SimRounds: 2}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "round 1: participants=3") {
		t.Fatalf("output missing round 1 summary:\n%s", text)
	}
	if !strings.Contains(text, "round 2: participants=3") {
		t.Fatalf("output missing round 2 summary:\n%s", text)
	}
	if !strings.Contains(text, "journal:") {
		t.Fatalf("output missing journal summary:\n%s", text)
	}
}

func TestSimulationValidatesInputs(t *testing.T) {
	cfg := Config{Simulate: true, SimPlayers: 0, SimRounds: 1}
	if err := Run(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error for zero players")
	}
}

func seedJournal(t *testing.T, dbPath string) {
	t.Helper()
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = store.AppendEvent(context.Background(), event.Event{
		Game:      event.GameFountain,
		Type:      event.TypeCoinTossed,
		Timestamp: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		ActorID:   "alice",
		EntityID:  "1",
	})
	if err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestStatusFromJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "arcade.db")
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	payload, err := event.MarshalPayload(event.RoundStarted{
		RoundID:      2,
		StartTime:    time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		StartingPool: decimal.RequireFromString("406125000000000"),
	})
	if err != nil {
		t.Fatalf("MarshalPayload: %v", err)
	}
	events := []event.Event{
		{Game: event.GameFountain, Type: event.TypeCoinTossed, EntityID: "1"},
		{Game: event.GameFountain, Type: event.TypeWinnerSelected, EntityID: "1"},
		{Game: event.GameFountain, Type: event.TypeRoundStarted, EntityID: "2", PayloadJSON: payload},
		{Game: event.GameFountain, Type: event.TypeCoinTossed, EntityID: "2"},
		{Game: event.GameFountain, Type: event.TypeCoinTossed, EntityID: "2"},
	}
	for i, evt := range events {
		if _, err := store.AppendEvent(context.Background(), evt); err != nil {
			t.Fatalf("AppendEvent %d: %v", i, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var out bytes.Buffer
	cfg := Config{DBPath: dbPath, Status: true}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "round 2: entries=2 starting_pool=406125000000000") {
		t.Fatalf("output missing round summary:\n%s", text)
	}
}

func TestStatusEmptyJournal(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "arcade.db"), Status: true}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "no lottery activity") {
		t.Fatalf("output = %s", out.String())
	}
}
