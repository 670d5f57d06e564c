package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/shiftbook/internal/domain"
)

// sqliteStore keeps documents as JSON text in a single local SQLite file.
// Merges run read-modify-write inside one transaction. Its change feed only
// sees writes made through this process.
type sqliteStore struct {
	db      *sql.DB
	changes *notifier
}

// OpenSQLite opens the database file at path, creating the parent directory if
// needed. The pool is limited to one connection so writers never contend for
// SQLite's file lock.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("repo.OpenSQLite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: pragma: %w", err)
	}
	return db, nil
}

// NewSQLiteStore constructs a DocumentStore backed by db.
// The shift_documents table must already exist (see migrations.Up).
func NewSQLiteStore(db *sql.DB) DocumentStore {
	return &sqliteStore{db: db, changes: newNotifier()}
}

func (s *sqliteStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	const q = `SELECT data FROM shift_documents WHERE collection = ? AND id = ?`

	var raw []byte
	err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repo.SQLiteStore.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Get: %w", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Get: decode: %w", err)
	}
	return doc, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, collection, id string, op UpsertOp) (domain.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Upsert: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var (
		raw      []byte
		existing domain.Document
	)
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM shift_documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("repo.SQLiteStore.Upsert: read: %w", err)
	default:
		if existing, err = decodeDocument(raw); err != nil {
			return nil, fmt.Errorf("repo.SQLiteStore.Upsert: decode: %w", err)
		}
	}

	merged := applyUpsert(existing, op)
	data, err := encodeDocument(merged)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Upsert: encode: %w", err)
	}

	const q = `
		INSERT INTO shift_documents (collection, id, data)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`
	if _, err := tx.ExecContext(ctx, q, collection, id, string(data)); err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Upsert: write: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.Upsert: commit: %w", err)
	}

	s.changes.publish(collection)
	return merged, nil
}

func (s *sqliteStore) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM shift_documents WHERE collection = ? AND id = ?`

	res, err := s.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return fmt.Errorf("repo.SQLiteStore.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.changes.publish(collection)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, collection string) (map[string]domain.Document, error) {
	const q = `SELECT id, data FROM shift_documents WHERE collection = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.List: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.Document{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("repo.SQLiteStore.List: scan: %w", err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("repo.SQLiteStore.List: decode %s: %w", id, err)
		}
		out[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteStore.List: rows: %w", err)
	}
	return out, nil
}

func (s *sqliteStore) Watch(ctx context.Context, collection string, notify func()) error {
	return s.changes.watch(ctx, collection, notify)
}
