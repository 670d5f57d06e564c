package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/shiftbook/internal/domain"
)

// NotifyChannel is the Postgres NOTIFY channel the shift_documents trigger
// publishes to. The payload is the collection name.
const NotifyChannel = "shift_documents"

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// connAcquirer hands out a dedicated connection for LISTEN. Satisfied by *pgxpool.Pool.
type connAcquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
}

// pgDocumentStore is the Postgres implementation of DocumentStore.
// Documents live in a jsonb column; merges are a single INSERT .. ON CONFLICT.
type pgDocumentStore struct {
	db       db
	listener connAcquirer
}

// NewPostgresStore constructs a DocumentStore backed by the provided db connection.
// In production pass *pgxpool.Pool for both arguments; in tests pass a pgx.Tx and
// a nil listener, in which case Watch returns an error.
func NewPostgresStore(db db, listener connAcquirer) DocumentStore {
	return &pgDocumentStore{db: db, listener: listener}
}

func (s *pgDocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	const q = `
		SELECT data
		FROM shift_documents
		WHERE collection = @collection AND id = @id`

	var raw []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"collection": collection, "id": id}).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.PostgresStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.PostgresStore.Get: %w", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Get: decode: %w", err)
	}
	return doc, nil
}

// Upsert merges in one statement, so concurrent writers to the same id are
// ordered by the row lock and Defaults are applied atomically.
func (s *pgDocumentStore) Upsert(ctx context.Context, collection, id string, op UpsertOp) (domain.Document, error) {
	const q = `
		INSERT INTO shift_documents (collection, id, data)
		VALUES (@collection, @id, @defaults::jsonb || @patch::jsonb)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = @defaults::jsonb || (shift_documents.data - @unset::text[]) || @patch::jsonb
		RETURNING data`

	patch, err := encodeDocument(op.Patch)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Upsert: encode patch: %w", err)
	}
	defaults, err := encodeDocument(op.Defaults)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Upsert: encode defaults: %w", err)
	}
	unset := op.Unset
	if unset == nil {
		unset = []string{} // NULL would turn the whole expression NULL
	}

	args := pgx.NamedArgs{
		"collection": collection,
		"id":         id,
		"patch":      patch,
		"defaults":   defaults,
		"unset":      unset,
	}

	var raw []byte
	if err := s.db.QueryRow(ctx, q, args).Scan(&raw); err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Upsert: %w", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.Upsert: decode: %w", err)
	}
	return doc, nil
}

func (s *pgDocumentStore) Delete(ctx context.Context, collection, id string) error {
	const q = `DELETE FROM shift_documents WHERE collection = @collection AND id = @id`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"collection": collection, "id": id}); err != nil {
		return fmt.Errorf("repo.PostgresStore.Delete: %w", err)
	}
	return nil
}

func (s *pgDocumentStore) List(ctx context.Context, collection string) (map[string]domain.Document, error) {
	const q = `
		SELECT id, data
		FROM shift_documents
		WHERE collection = @collection
		ORDER BY id`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"collection": collection})
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.List: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.Document{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("repo.PostgresStore.List: scan: %w", err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("repo.PostgresStore.List: decode %s: %w", id, err)
		}
		out[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.List: rows: %w", err)
	}
	return out, nil
}

// Watch holds one connection out of the pool for the lifetime of the watch and
// LISTENs on NotifyChannel. The connection is closed rather than returned to
// the pool so no other caller inherits the LISTEN.
func (s *pgDocumentStore) Watch(ctx context.Context, collection string, notify func()) error {
	if s.listener == nil {
		return errors.New("repo.PostgresStore.Watch: no listener pool configured")
	}

	pc, err := s.listener.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("repo.PostgresStore.Watch: acquire: %w", err)
	}
	conn := pc.Hijack()
	defer conn.Close(context.Background()) //nolint:errcheck

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("repo.PostgresStore.Watch: listen: %w", err)
	}
	notify()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("repo.PostgresStore.Watch: wait: %w", err)
		}
		if n.Payload == collection {
			notify()
		}
	}
}
