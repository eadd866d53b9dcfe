package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresRecorder stores entries in the audit_history table.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder connects, retrying the ping while the database starts,
// and creates the table when missing.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres history: POSTGRES_DSN is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_history (
			id            UUID        PRIMARY KEY,
			url           TEXT        NOT NULL,
			score         INTEGER     NOT NULL,
			total_checks  INTEGER     NOT NULL,
			passed_checks INTEGER     NOT NULL,
			issue_count   INTEGER     NOT NULL,
			top_keywords  TEXT[]      NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_audit_history_url_created ON audit_history(url, created_at DESC);
	`)
	return err
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_history (id, url, score, total_checks, passed_checks, issue_count, top_keywords, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.URL, e.Score, e.TotalChecks, e.PassedChecks, e.IssueCount, pq.Array(e.TopKeywords), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: record %s: %w", e.URL, err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, url string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, url, score, total_checks, passed_checks, issue_count, top_keywords, created_at
		FROM audit_history
		WHERE ($1 = '' OR url = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, url, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.URL, &e.Score, &e.TotalChecks, &e.PassedChecks,
			&e.IssueCount, pq.Array(&e.TopKeywords), &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRecorder) Close() error {
	return r.db.Close()
}
