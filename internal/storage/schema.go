// internal/storage/schema.go
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Only column types differ between the two backends. Loans, donations and hours
// refer to books and users by id, without foreign keys.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS books (
	id              {{id}} PRIMARY KEY,
	title           TEXT NOT NULL,
	author          TEXT NOT NULL,
	isbn            TEXT NOT NULL,
	isbn_normalized TEXT NOT NULL UNIQUE,
	available       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id           {{id}} PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	active       BOOLEAN NOT NULL DEFAULT TRUE,
	credits      {{float}} NOT NULL DEFAULT 0,
	pending_fees {{float}} NOT NULL DEFAULT 0,
	created_at   {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
	id          {{id}} PRIMARY KEY,
	book_id     {{id}} NOT NULL,
	user_id     {{id}} NOT NULL,
	loaned_at   {{ts}} NOT NULL,
	due_at      {{ts}} NOT NULL,
	returned_at {{ts}},
	fee         {{float}} NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS loans_user_id_idx ON loans (user_id);
CREATE INDEX IF NOT EXISTS loans_book_id_idx ON loans (book_id);

CREATE TABLE IF NOT EXISTS donations (
	id         {{id}} PRIMARY KEY,
	book_id    {{id}} NOT NULL,
	user_id    {{id}} NOT NULL,
	donated_at {{ts}} NOT NULL,
	credits    {{float}} NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS volunteer_hours (
	id          {{id}} PRIMARY KEY,
	user_id     {{id}} NOT NULL,
	hours       {{float}} NOT NULL,
	activity    TEXT NOT NULL,
	recorded_at {{ts}} NOT NULL,
	credits     {{float}} NOT NULL DEFAULT 0
);
`

func schemaFor(driver string) string {
	r := strings.NewReplacer(
		"{{id}}", "TEXT",
		"{{ts}}", "DATETIME",
		"{{float}}", "REAL",
	)
	if driver == DriverPostgres {
		r = strings.NewReplacer(
			"{{id}}", "UUID",
			"{{ts}}", "TIMESTAMPTZ",
			"{{float}}", "DOUBLE PRECISION",
		)
	}
	return r.Replace(schemaTemplate)
}

// Migrate creates the tables the repositories use.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaFor(d.driver), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
