package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
)

// SQLiteLinkRepository implements LinkRepository on a local sqlite file
type SQLiteLinkRepository struct {
	db *sql.DB
}

// NewSQLiteLinkRepository creates a new sqlite link repository on a migrated db
func NewSQLiteLinkRepository(db *sql.DB) repository.LinkRepository {
	return &SQLiteLinkRepository{db: db}
}

// Append assigns max(id)+1 inside the insert transaction
func (r *SQLiteLinkRepository) Append(ctx context.Context, link *entity.CapturedLink) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM captured_links;`).Scan(&next); err != nil {
		return fmt.Errorf("next link id: %w", err)
	}

	createdAt := link.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO captured_links (id, run_id, source_id, route, url, origin_url, status, reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		next, link.RunID, link.SourceID, link.Route, link.URL, link.OriginURL,
		string(link.Status), link.Reason, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	link.ID = next
	return nil
}

// List returns every link ordered by id
func (r *SQLiteLinkRepository) List(ctx context.Context) ([]*entity.CapturedLink, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, run_id, source_id, route, url, origin_url, status, reason, created_at
FROM captured_links
ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*entity.CapturedLink
	for rows.Next() {
		var (
			l         entity.CapturedLink
			status    string
			createdAt string
		)
		if err := rows.Scan(&l.ID, &l.RunID, &l.SourceID, &l.Route, &l.URL, &l.OriginURL, &status, &l.Reason, &createdAt); err != nil {
			return nil, err
		}
		l.Status = entity.LinkStatus(status)
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		links = append(links, &l)
	}
	return links, rows.Err()
}

// Close is a no-op; the db is owned by the caller
func (r *SQLiteLinkRepository) Close() error {
	return nil
}
