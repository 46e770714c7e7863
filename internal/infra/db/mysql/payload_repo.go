package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// PayloadRepository reads payload rows written by the reporting collaborator.
//
//	CREATE TABLE analytics_payloads (
//	  filename     VARCHAR(255) PRIMARY KEY,
//	  payload_json JSON NOT NULL,
//	  generated_at DATETIME NOT NULL
//	);
type PayloadRepository struct {
	db *sql.DB
}

func NewPayloadRepository(db *sql.DB) *PayloadRepository {
	return &PayloadRepository{db: db}
}

// Load implements analytics.Source.
func (r *PayloadRepository) Load(ctx context.Context, filename string) (*analytics.Payload, error) {
	const q = `
SELECT payload_json, generated_at
FROM analytics_payloads
WHERE filename=? LIMIT 1;
`
	var raw []byte
	var generated time.Time
	if err := r.db.QueryRowContext(ctx, q, filename).Scan(&raw, &generated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", filename, analytics.ErrNotFound)
		}
		return nil, err
	}
	p, err := analytics.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode payload %s (generated %s): %w", filename, generated.Format(time.RFC3339), err)
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
LIMIT ?;
`
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
