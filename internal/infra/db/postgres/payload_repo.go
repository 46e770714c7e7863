package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// PayloadRepository reads analytics_payloads rows. payload_json must be a
// json column, not jsonb: jsonb reorders object keys and the chart column
// order comes from them.
type PayloadRepository struct {
	db *sql.DB
}

func NewPayloadRepository(db *sql.DB) *PayloadRepository {
	return &PayloadRepository{db: db}
}

// Load implements analytics.Source.
func (r *PayloadRepository) Load(ctx context.Context, filename string) (*analytics.Payload, error) {
	const q = `
SELECT payload_json::text
FROM analytics_payloads
WHERE filename=$1
LIMIT 1;`
	var raw string
	if err := r.db.QueryRowContext(ctx, q, filename).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", filename, analytics.ErrNotFound)
		}
		return nil, err
	}
	p, err := analytics.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", filename, err)
	}
	p.Filename = filename
	return p, nil
}

// Filenames lists the stored payloads, newest first.
func (r *PayloadRepository) Filenames(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT filename
FROM analytics_payloads
ORDER BY generated_at DESC, filename ASC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
