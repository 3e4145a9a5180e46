// pkg/eventstore/eventstore_test.go
package eventstore

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func setupSQLiteStore(t testing.TB) *EventStore {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := NewEventStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

// setupPostgresStore skips when no postgres instance is reachable.
func setupPostgresStore(t testing.TB) *EventStore {
	t.Helper()

	dsn := os.Getenv("EVENTSTORE_TEST_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=user password=password dbname=testdb sslmode=disable"
	}

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewEventStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

type testEvent struct {
	Message string `json:"message"`
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": setupSQLiteStore(t),
	}
}

func TestAppendAndLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()

			err := store.AppendEvents(ctx, id, "loan", 0, []Event{
				{EventType: "BookLent", EventData: []byte(`{"message":"lent"}`)},
				{
					EventType: "LoanReturned",
					EventData: []byte(`{"message":"returned"}`),
					Metadata:  map[string]interface{}{"source": "test"},
				},
			})
			require.NoError(t, err)

			events, err := store.LoadEvents(ctx, id, 0, 0)
			require.NoError(t, err)
			require.Len(t, events, 2)

			assert.Equal(t, 1, events[0].Version)
			assert.Equal(t, "BookLent", events[0].EventType)
			assert.Equal(t, 2, events[1].Version)
			assert.Equal(t, "loan", events[1].AggregateType)
			assert.Equal(t, id, events[1].AggregateID)
			assert.Equal(t, "test", events[1].Metadata["source"])
			assert.JSONEq(t, `{"message":"returned"}`, string(events[1].EventData))

			version, err := store.GetCurrentVersion(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 2, version)
		})
	}
}

func TestAppendDetectsConflict(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()
			events := []Event{{EventType: "BookLent", EventData: []byte(`{}`)}}

			require.NoError(t, store.AppendEvents(ctx, id, "loan", 0, events))

			err := store.AppendEvents(ctx, id, "loan", 0, events)
			assert.ErrorIs(t, err, ErrConcurrencyConflict)

			err = store.AppendEvents(ctx, id, "loan", -1, events)
			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}

func TestLoadEventsVersionRange(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()

			for i := 0; i < 5; i++ {
				require.NoError(t, Record(ctx, store, id, "book", "BookTouched", testEvent{Message: fmt.Sprint(i)}))
			}

			events, err := store.LoadEvents(ctx, id, 2, 4)
			require.NoError(t, err)
			require.Len(t, events, 3)
			assert.Equal(t, 2, events[0].Version)
			assert.Equal(t, 4, events[2].Version)
		})
	}
}

func TestRecordAppendsAtNextVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, Record(ctx, store, id, "user", "UserRegistered", testEvent{Message: "hi"}))
	require.NoError(t, Record(ctx, store, id, "user", "UserDeactivated", testEvent{Message: "bye"}))

	events, err := store.LoadEvents(ctx, id, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "UserDeactivated", events[1].EventType)
	assert.JSONEq(t, `{"message":"bye"}`, string(events[1].EventData))
}

func TestUnknownAggregateIsEmpty(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			events, err := store.LoadEvents(context.Background(), uuid.New(), 0, 0)
			require.NoError(t, err)
			assert.Empty(t, events)

			version, err := store.GetCurrentVersion(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Zero(t, version)
		})
	}
}

func BenchmarkAppendEvents(b *testing.B) {
	store := setupPostgresStore(b)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		aggregateID := uuid.New()
		eventData, _ := json.Marshal(testEvent{Message: fmt.Sprintf("event %d", i)})
		events := []Event{{EventType: "TestEvent", EventData: eventData}}
		b.StartTimer()

		if err := store.AppendEvents(context.Background(), aggregateID, "test_aggregate", 0, events); err != nil {
			b.Fatalf("AppendEvents failed: %v", err)
		}
	}
}

func BenchmarkLoadEvents(b *testing.B) {
	store := setupPostgresStore(b)

	aggregateID := uuid.New()
	for i := 0; i < 10; i++ {
		eventData, _ := json.Marshal(testEvent{Message: fmt.Sprintf("event %d", i)})
		events := []Event{{EventType: "TestEvent", EventData: eventData}}
		if err := store.AppendEvents(context.Background(), aggregateID, "test_aggregate", i, events); err != nil {
			b.Fatalf("failed to setup events for benchmark: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.LoadEvents(context.Background(), aggregateID, 0, 0); err != nil {
			b.Fatalf("LoadEvents failed: %v", err)
		}
	}
}
