package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

// NewProvider returns a goose provider for the embedded migrations against a
// Postgres *sql.DB. Use stdlib.OpenDBFromPool to obtain one from a pgx pool.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, FS)
}
