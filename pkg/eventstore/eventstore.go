// pkg/eventstore/eventstore.go
package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event represents a domain event with full metadata
type Event struct {
	ID            int64                  `json:"id"`
	AggregateID   uuid.UUID              `json:"aggregate_id"`
	AggregateType string                 `json:"aggregate_type"`
	EventType     string                 `json:"event_type"`
	EventData     jsoniter.RawMessage    `json:"event_data"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Version       int                    `json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Store is an append-only log of events grouped by aggregate.
type Store interface {
	AppendEvents(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error
	LoadEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error)
	GetCurrentVersion(ctx context.Context, aggregateID uuid.UUID) (int, error)
}

// Record appends a single event whose payload is marshalled from data.
func Record(ctx context.Context, store Store, aggregateID uuid.UUID, aggregateType, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	version, err := store.GetCurrentVersion(ctx, aggregateID)
	if err != nil {
		return err
	}

	return store.AppendEvents(ctx, aggregateID, aggregateType, version, []Event{{
		EventType: eventType,
		EventData: payload,
	}})
}

// EventStore persists events in the "events" table of a postgres or sqlite database.
type EventStore struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

var _ Store = (*EventStore)(nil)

// NewEventStore creates a new event store on top of an open connection pool
func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{
		db:     db,
		tracer: otel.Tracer("biblioteca/eventstore"),
	}
}

func (es *EventStore) isPostgres() bool {
	return es.db.DriverName() == "postgres"
}

// EnsureSchema creates the events table when missing.
func (es *EventStore) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aggregate_id TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT NOT NULL,
			metadata TEXT,
			version INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (aggregate_id, version)
		)
	`
	if es.isPostgres() {
		ddl = `
			CREATE TABLE IF NOT EXISTS events (
				id BIGSERIAL PRIMARY KEY,
				aggregate_id UUID NOT NULL,
				aggregate_type TEXT NOT NULL,
				event_type TEXT NOT NULL,
				event_data JSONB NOT NULL,
				metadata JSONB,
				version INT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (aggregate_id, version)
			)
		`
	}

	if _, err := es.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

// AppendEvents atomically appends events with optimistic concurrency control
func (es *EventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	ctx, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	opts := &sql.TxOptions{}
	if es.isPostgres() {
		opts.Isolation = sql.LevelSerializable
	}

	tx, err := es.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowxContext(ctx, es.db.Rebind(`
		SELECT COALESCE(MAX(version), 0)
		FROM events
		WHERE aggregate_id = ?
	`), aggregateID.String()).Scan(&currentVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query current version: %w", err)
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	stmt, err := tx.PreparexContext(ctx, es.db.Rebind(`
		INSERT INTO events (aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, event := range events {
		version := expectedVersion + i + 1

		var metadata sql.NullString
		if len(event.Metadata) > 0 {
			raw, err := json.Marshal(event.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata of event %d: %w", i, err)
			}
			metadata = sql.NullString{String: string(raw), Valid: true}
		}

		var eventID int64
		err = stmt.QueryRowxContext(
			ctx,
			aggregateID.String(),
			aggregateType,
			event.EventType,
			string(event.EventData),
			metadata,
			version,
			time.Now().UTC(),
		).Scan(&eventID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert event %d: %w", i, err)
		}

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", eventID),
			attribute.Int("event.version", version),
			attribute.String("event.type", event.EventType),
		))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

type eventRow struct {
	ID            int64          `db:"id"`
	AggregateID   string         `db:"aggregate_id"`
	AggregateType string         `db:"aggregate_type"`
	EventType     string         `db:"event_type"`
	EventData     string         `db:"event_data"`
	Metadata      sql.NullString `db:"metadata"`
	Version       int            `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
}

// LoadEvents retrieves all events for an aggregate with optional version range
func (es *EventStore) LoadEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at
		FROM events
		WHERE aggregate_id = ?
		AND version >= ?
	`
	args := []interface{}{aggregateID.String(), fromVersion}

	if toVersion > 0 {
		query += " AND version <= ?"
		args = append(args, toVersion)
	}

	query += " ORDER BY version ASC"

	var rows []eventRow
	if err := sqlx.SelectContext(ctx, es.db, &rows, es.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

func (r eventRow) toEvent() (Event, error) {
	id, err := uuid.Parse(r.AggregateID)
	if err != nil {
		return Event{}, fmt.Errorf("parse aggregate id of event %d: %w", r.ID, err)
	}

	event := Event{
		ID:            r.ID,
		AggregateID:   id,
		AggregateType: r.AggregateType,
		EventType:     r.EventType,
		EventData:     jsoniter.RawMessage(r.EventData),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
	}

	if r.Metadata.Valid && r.Metadata.String != "" {
		if err := json.UnmarshalFromString(r.Metadata.String, &event.Metadata); err != nil {
			return Event{}, fmt.Errorf("decode metadata of event %d: %w", r.ID, err)
		}
	}
	return event, nil
}

// GetCurrentVersion returns the latest version for an aggregate
func (es *EventStore) GetCurrentVersion(ctx context.Context, aggregateID uuid.UUID) (int, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
		),
	)
	defer span.End()

	var version int
	err := es.db.QueryRowxContext(ctx, es.db.Rebind(`
		SELECT COALESCE(MAX(version), 0)
		FROM events
		WHERE aggregate_id = ?
	`), aggregateID.String()).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
