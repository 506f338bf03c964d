package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lowember/ember/internal/session"
)

// Append records one exchange for token. It satisfies session.Journal.
func (db *DB) Append(ctx context.Context, token string, ex session.Exchange) error {
	at := ex.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO exchanges (token, text, reply, mode, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, token, ex.Text, ex.Reply, ex.Mode, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// List returns the most recent limit exchanges for token, oldest first.
// limit <= 0 returns everything.
func (db *DB) List(ctx context.Context, token string, limit int) ([]session.Exchange, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.QueryContext(ctx, `
		SELECT text, reply, mode, created_at FROM (
			SELECT id, text, reply, mode, created_at
			FROM exchanges WHERE token = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, token, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []session.Exchange
	for rows.Next() {
		var ex session.Exchange
		var at int64
		if err := rows.Scan(&ex.Text, &ex.Reply, &ex.Mode, &at); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.At = time.UnixMilli(at)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// CountExchanges returns how many exchanges are recorded for token.
func (db *DB) CountExchanges(ctx context.Context, token string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exchanges WHERE token = ?", token).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return n, nil
}

// ModeCounts returns exchange totals per mode across all sessions.
func (db *DB) ModeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT mode, COUNT(*) FROM exchanges GROUP BY mode")
	if err != nil {
		return nil, fmt.Errorf("mode counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var mode string
		var n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("scan mode count: %w", err)
		}
		counts[mode] = n
	}
	return counts, rows.Err()
}
