// Package storage persists dashboard snapshots in SQLite. Snapshots are the
// serving fallback: when a live spreadsheet read fails, the API answers from
// the most recent snapshot instead of erroring.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one persisted dashboard payload for a company.
type Snapshot struct {
	ID        int64
	Company   string
	Payload   []byte
	RowCount  int
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot stores a dashboard payload and returns the snapshot ID.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, company string, payload []byte, rowCount int) (int64, error) {
	if company == "" {
		return 0, errors.New("company is required")
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (company, payload, row_count, created_at) VALUES (?, ?, ?, ?)`,
		company, payload, rowCount, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", id,
		"company", company,
		"row_count", rowCount,
		"payload_bytes", len(payload))

	return id, nil
}

// LatestSnapshot returns the most recent snapshot for a company.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, company string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, company, payload, row_count, created_at
		   FROM snapshots WHERE company = ?
		  ORDER BY created_at DESC, id DESC LIMIT 1`, company)

	var s Snapshot
	err := row.Scan(&s.ID, &s.Company, &s.Payload, &s.RowCount, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("latest snapshot for %s: %w", company, ErrSnapshotNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot for %s: %w", company, err)
	}
	return s, nil
}

// ListSnapshots returns the most recent snapshots for a company, newest first,
// without their payloads.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, company string, limit int) ([]Snapshot, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company, row_count, created_at
		   FROM snapshots WHERE company = ?
		  ORDER BY created_at DESC, id DESC LIMIT ?`, company, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", company, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Company, &s.RowCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// PruneSnapshots deletes all but the newest keep snapshots for a company and
// returns the number removed.
func (r *SQLiteRepository) PruneSnapshots(ctx context.Context, company string, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots
		  WHERE company = ?
		    AND id NOT IN (
		        SELECT id FROM snapshots WHERE company = ?
		         ORDER BY created_at DESC, id DESC LIMIT ?)`,
		company, company, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots for %s: %w", company, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	if removed > 0 {
		slog.InfoContext(ctx, "Old snapshots pruned", "company", company, "removed", removed, "keep", keep)
	}
	return removed, nil
}
