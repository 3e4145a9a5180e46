// internal/storage/storage.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported backends.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Transactor runs fn inside one consistency boundary. Nested calls join the
// boundary that is already open on ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// QueryObserver is notified after every statement a DB executes.
type QueryObserver interface {
	ObserveDB(query string, start time.Time, err error)
}

// Query is anything that renders to SQL plus arguments; every goqu dataset does.
type Query interface {
	ToSQL() (string, []interface{}, error)
}

// DB wraps an sqlx handle with the goqu dialect matching its driver.
type DB struct {
	db       *sqlx.DB
	driver   string
	dialect  goqu.DialectWrapper
	observer QueryObserver
}

var _ Transactor = (*DB)(nil)

type txKey struct{}

// Open connects to the given backend and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == DriverSQLite {
		// a single connection keeps in-memory databases shared and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return New(db, driver), nil
}

// New wraps an already opened handle.
func New(db *sqlx.DB, driver string) *DB {
	dialect := "postgres"
	if driver == DriverSQLite {
		dialect = "sqlite3"
	}
	return &DB{
		db:      db,
		driver:  driver,
		dialect: goqu.Dialect(dialect),
	}
}

// SetObserver installs a hook that sees every executed statement.
func (d *DB) SetObserver(o QueryObserver) {
	d.observer = o
}

func (d *DB) Driver() string {
	return d.driver
}

// SQLX exposes the underlying handle for components that manage their own statements.
func (d *DB) SQLX() *sqlx.DB {
	return d.db
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) From(table string) *goqu.SelectDataset {
	return d.dialect.From(table).Prepared(true)
}

func (d *DB) Insert(table string) *goqu.InsertDataset {
	return d.dialect.Insert(table).Prepared(true)
}

func (d *DB) Update(table string) *goqu.UpdateDataset {
	return d.dialect.Update(table).Prepared(true)
}

func (d *DB) Delete(table string) *goqu.DeleteDataset {
	return d.dialect.Delete(table).Prepared(true)
}

// WithinTx implements Transactor with a database transaction.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (d *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.db
}

func (d *DB) observe(name string, start time.Time, err error) {
	if d.observer != nil {
		d.observer.ObserveDB(name, start, err)
	}
}

// Get scans a single row into dest. It reports false when no row matched.
func (d *DB) Get(ctx context.Context, name string, dest any, q Query) (found bool, err error) {
	defer func(start time.Time) {
		d.observe(name, start, err)
	}(time.Now())

	query, args, err := q.ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s: %w", name, err)
	}

	err = sqlx.GetContext(ctx, d.ext(ctx), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return true, nil
}

// Select scans all matching rows into dest, which must be a pointer to a slice.
func (d *DB) Select(ctx context.Context, name string, dest any, q Query) (err error) {
	defer func(start time.Time) {
		d.observe(name, start, err)
	}(time.Now())

	query, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}

	if err = sqlx.SelectContext(ctx, d.ext(ctx), dest, query, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Exec runs a statement and returns the number of affected rows.
func (d *DB) Exec(ctx context.Context, name string, q Query) (affected int64, err error) {
	defer func(start time.Time) {
		d.observe(name, start, err)
	}(time.Now())

	query, args, err := q.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", name, err)
	}

	res, err := d.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	affected, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", name, err)
	}
	return affected, nil
}

// Upsert updates the row matched by update and inserts when nothing matched.
func (d *DB) Upsert(ctx context.Context, name string, update, insert Query) error {
	affected, err := d.Exec(ctx, name+"_update", update)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	_, err = d.Exec(ctx, name+"_insert", insert)
	return err
}

// IsUniqueViolation reports whether err was caused by a unique or primary key constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
