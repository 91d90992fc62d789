// Package sqlitemigrate applies embedded SQL migrations to a SQLite database,
// tracking applied files by name so each one runs at most once.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const (
	trackingTable = "schema_migrations"

	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Apply runs the Up section of every .sql file at the root of fsys, in
// lexical order, skipping files already recorded in the tracking table.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}

	files, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)",
		trackingTable,
	)); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		up := upSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		if err := applyOne(ctx, db, name, up); err != nil {
			return err
		}
	}
	return nil
}

func listMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyOne(ctx context.Context, db *sql.DB, name, up string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, up); err != nil {
		// Re-running idempotent DDL against an existing schema is fine.
		if !isDuplicateDDL(err) {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", trackingTable),
		name,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

// upSection returns the SQL between the Up and Down markers. A file without
// markers is treated as a bare Up migration.
func upSection(content string) string {
	start := strings.Index(content, upMarker)
	if start == -1 {
		return content
	}
	body := content[start+len(upMarker):]
	if end := strings.Index(body, downMarker); end != -1 {
		body = body[:end]
	}
	return body
}

func isDuplicateDDL(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+trackingTable+" WHERE name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
