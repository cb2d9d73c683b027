package repository

import (
	"context"
	"database/sql"
	"time"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/domain/repository"
)

// SQLiteListingRepository implements ListingRepository on a local sqlite file
type SQLiteListingRepository struct {
	db *sql.DB
}

// NewSQLiteListingRepository creates a new sqlite listing repository on a migrated db
func NewSQLiteListingRepository(db *sql.DB) repository.ListingRepository {
	return &SQLiteListingRepository{db: db}
}

// Append inserts records in a single transaction
func (r *SQLiteListingRepository) Append(ctx context.Context, records []*entity.FlightListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO flight_listings (
  search_url, price,
  outbound_timing, outbound_airline, outbound_stops, outbound_layover, outbound_duration,
  has_return, return_timing, return_airline, return_stops, return_layover, return_duration,
  scraped_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var ret entity.Leg
		hasReturn := 0
		if rec.Return != nil {
			ret = *rec.Return
			hasReturn = 1
		}
		scraped := rec.ScrapedAt
		if scraped.IsZero() {
			scraped = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			rec.SearchURL, rec.Price,
			rec.Outbound.Timing, rec.Outbound.Airline, rec.Outbound.Stops, rec.Outbound.Layover, rec.Outbound.Duration,
			hasReturn, ret.Timing, ret.Airline, ret.Stops, ret.Layover, ret.Duration,
			scraped.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close is a no-op; the db is owned by the caller
func (r *SQLiteListingRepository) Close() error {
	return nil
}
