package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens the sqlite file at path and migrates it
func NewSQLiteDB(path string) (*sql.DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func migrateSQLite(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS captured_links (
  id INTEGER PRIMARY KEY,
  run_id TEXT NOT NULL,
  source_id TEXT NOT NULL DEFAULT '',
  route TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  origin_url TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS flight_listings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  search_url TEXT NOT NULL,
  price TEXT NOT NULL,
  outbound_timing TEXT NOT NULL,
  outbound_airline TEXT NOT NULL,
  outbound_stops TEXT NOT NULL,
  outbound_layover TEXT NOT NULL,
  outbound_duration TEXT NOT NULL,
  has_return INTEGER NOT NULL DEFAULT 0,
  return_timing TEXT NOT NULL DEFAULT '',
  return_airline TEXT NOT NULL DEFAULT '',
  return_stops TEXT NOT NULL DEFAULT '',
  return_layover TEXT NOT NULL DEFAULT '',
  return_duration TEXT NOT NULL DEFAULT '',
  scraped_at TEXT NOT NULL
);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_flight_listings_url ON flight_listings(search_url);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
