// Package sqlite provides the SQLite-backed arcade store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/pixelfount/arcade/internal/event"
	"github.com/pixelfount/arcade/internal/platform/storage/sqlitemigrate"
	"github.com/pixelfount/arcade/internal/storage"
	"github.com/pixelfount/arcade/internal/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store provides a SQLite-backed store implementing all storage interfaces.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if needed) the arcade journal database at the provided
// path and applies embedded migrations. ":memory:" opens a throwaway
// in-memory database, which the tests use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEvent assigns the next per-game sequence number and persists the
// event within one transaction, so sequences are gap-free even under
// concurrent appends.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("event type is required")
	}
	if strings.TrimSpace(string(evt.Game)) == "" {
		return event.Event{}, fmt.Errorf("event game is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO event_seq (game, next_seq) VALUES (?, 1)",
		string(evt.Game),
	); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE game = ?",
		string(evt.Game),
	).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = next_seq + 1 WHERE game = ?",
		string(evt.Game),
	); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}
	evt.Seq = uint64(seq)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (game, seq, timestamp, event_type, actor_id, entity_id, payload_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(evt.Game),
		seq,
		toMillis(evt.Timestamp),
		string(evt.Type),
		evt.ActorID,
		evt.EntityID,
		evt.PayloadJSON,
	); err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit append tx: %w", err)
	}
	return evt, nil
}

// ListEvents returns up to limit events for a game with Seq > sinceSeq, in
// sequence order. A non-positive limit means no limit.
func (s *Store) ListEvents(ctx context.Context, game event.Game, sinceSeq uint64, limit int) ([]event.Event, error) {
	query := `SELECT seq, timestamp, event_type, actor_id, entity_id, payload_json
		 FROM events WHERE game = ? AND seq > ? ORDER BY seq`
	args := []any{string(game), int64(sinceSeq)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			seq       int64
			ts        int64
			eventType string
			actorID   string
			entityID  string
			payload   []byte
		)
		if err := rows.Scan(&seq, &ts, &eventType, &actorID, &entityID, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event.Event{
			Game:        game,
			Seq:         uint64(seq),
			Timestamp:   fromMillis(ts),
			Type:        event.Type(eventType),
			ActorID:     actorID,
			EntityID:    entityID,
			PayloadJSON: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// RecordRoundFee persists one external fee credit for audit.
func (s *Store) RecordRoundFee(ctx context.Context, fee storage.RoundFee) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO round_fees (round_id, amount, source, timestamp) VALUES (?, ?, ?, ?)",
		int64(fee.RoundID),
		fee.Amount.String(),
		fee.Source,
		toMillis(fee.Timestamp),
	); err != nil {
		return fmt.Errorf("record round fee: %w", err)
	}
	return nil
}

// ListRoundFees returns the fees credited to a round in insertion order.
func (s *Store) ListRoundFees(ctx context.Context, roundID uint64) ([]storage.RoundFee, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT amount, source, timestamp FROM round_fees WHERE round_id = ? ORDER BY id",
		int64(roundID),
	)
	if err != nil {
		return nil, fmt.Errorf("list round fees: %w", err)
	}
	defer rows.Close()

	var fees []storage.RoundFee
	for rows.Next() {
		var (
			amount string
			source string
			ts     int64
		)
		if err := rows.Scan(&amount, &source, &ts); err != nil {
			return nil, fmt.Errorf("scan round fee: %w", err)
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse round fee amount: %w", err)
		}
		fees = append(fees, storage.RoundFee{
			RoundID:   roundID,
			Amount:    parsed,
			Source:    source,
			Timestamp: fromMillis(ts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read round fees: %w", err)
	}
	return fees, nil
}

// AppendTelemetryEvent persists one operational telemetry record.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO telemetry_events (timestamp, severity, operation, detail) VALUES (?, ?, ?, ?)",
		toMillis(evt.Timestamp),
		evt.Severity,
		evt.Operation,
		evt.Detail,
	); err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
