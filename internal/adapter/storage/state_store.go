// internal/adapter/storage/state_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"octopal/internal/domain/progression"
)

// StateStore implements progression state storage on Postgres. Each record is
// one jsonb row keyed by name; reports go to an append-only table.
type StateStore struct {
	db *pgxpool.Pool
}

// NewStateStore creates a new state store
func NewStateStore(db *pgxpool.Pool) *StateStore {
	return &StateStore{
		db: db,
	}
}

// EnsureSchema creates the backing tables if they do not exist.
func (s *StateStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS progression_state (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			title TEXT,
			submitted_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// Get loads one record into v. Returns false when the key has never been set.
func (s *StateStore) Get(ctx context.Context, key string, v any) (bool, error) {
	query := `SELECT value FROM progression_state WHERE key = $1`

	var data []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&data)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error querying state %q: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("error unmarshaling state %q: %w", key, err)
	}
	return true, nil
}

// SetAll upserts every record in one transaction.
func (s *StateStore) SetAll(ctx context.Context, records map[string]any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO progression_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = $2, updated_at = now()
	`

	for key, v := range records {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("error marshaling state %q: %w", key, err)
		}
		if _, err := tx.Exec(ctx, query, key, data); err != nil {
			return fmt.Errorf("error upserting state %q: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// AppendReport appends a report row.
func (s *StateStore) AppendReport(ctx context.Context, r progression.Report) error {
	query := `
		INSERT INTO reports (id, url, title, submitted_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query, r.ID, r.URL, r.Title, r.Timestamp)
	if err != nil {
		return fmt.Errorf("error inserting report: %w", err)
	}
	return nil
}

// ListReports returns the most recent reports, newest first.
func (s *StateStore) ListReports(ctx context.Context, limit int) ([]progression.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, url, title, submitted_at
		FROM reports
		ORDER BY submitted_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	var reports []progression.Report
	for rows.Next() {
		var r progression.Report
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning report: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}
