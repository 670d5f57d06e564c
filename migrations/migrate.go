package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Dir returns the embedded migration directory for a goose dialect.
func Dir(dialect goose.Dialect) (fs.FS, error) {
	switch dialect {
	case goose.DialectPostgres:
		return fs.Sub(FS, "postgres")
	case goose.DialectSQLite3:
		return fs.Sub(FS, "sqlite")
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// NewProvider builds a goose provider over the embedded migrations for dialect.
func NewProvider(dialect goose.Dialect, db *sql.DB) (*goose.Provider, error) {
	dir, err := Dir(dialect)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: create goose provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration and returns how many ran.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB) (int, error) {
	provider, err := NewProvider(dialect, db)
	if err != nil {
		return 0, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations: up: %w", err)
	}
	return len(results), nil
}
