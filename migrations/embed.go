// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
// Postgres and SQLite keep separate directories because the schemas differ
// (jsonb plus a NOTIFY trigger versus plain JSON text).
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Use Up rather than reading it directly; it picks the right sub-directory.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
