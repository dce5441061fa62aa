// Package db provides the Postgres side of the storage selection: the
// server uses it when DATABASE_URL is set and falls back to JSON files
// under DATA_DIR otherwise.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection for the feature repositories using the
// given DSN and verifies it with a ping, so a bad DSN fails at startup
// rather than on the first request. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
