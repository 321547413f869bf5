// Package migrations holds the goose SQL migrations for the claims schema.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

// FS contains every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS

// Open returns a goose provider over a database/sql handle for dsn; goose
// cannot run on a pgxpool. The returned close func releases the handle.
// The provider handles the $$-quoted trigger bodies that the legacy
// goose.Up splitter breaks on.
func Open(dsn string) (*goose.Provider, func() error, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("migrations: open database: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: goose provider: %w", err)
	}
	return provider, db.Close, nil
}
