package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/datallboy/rangefetch/internal/domain"
)

const downloadColumns = `id, url, host, port, path, output, status,
	declared_length, bytes_received, requests, sha256, error, started_at, finished_at`

// SaveDownload inserts rec or updates the row with the same ID.
func (s *PersistentStore) SaveDownload(ctx context.Context, rec *domain.DownloadRecord) error {
	d := toDownloadDBO(rec)

	// Numbered placeholders are understood by both sqlite and postgres
	query := `
		INSERT INTO downloads (` + downloadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			declared_length = excluded.declared_length,
			bytes_received = excluded.bytes_received,
			requests = excluded.requests,
			sha256 = excluded.sha256,
			error = excluded.error,
			finished_at = excluded.finished_at`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.URL, d.Host, d.Port, d.Path, d.Output, d.Status,
		d.DeclaredLength, d.BytesReceived, d.Requests,
		d.SHA256, d.Error, d.StartedAt, d.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save download %s: %w", rec.ID, err)
	}
	return nil
}

// GetDownload returns nil without an error when no record has the ID.
func (s *PersistentStore) GetDownload(ctx context.Context, id string) (*domain.DownloadRecord, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE id = $1`

	rec, err := scanDownload(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load download %s: %w", id, err)
	}
	return rec, nil
}

// ListDownloads returns up to limit records, newest first. KSUIDs sort by
// creation time so ordering on the ID is enough. A limit of zero or less
// returns everything.
func (s *PersistentStore) ListDownloads(ctx context.Context, limit int) ([]*domain.DownloadRecord, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var out []*domain.DownloadRecord
	for rows.Next() {
		rec, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
