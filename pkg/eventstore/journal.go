// pkg/eventstore/journal.go
package eventstore

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Journal records events after the state they describe has been committed.
// A failed append is logged and otherwise ignored: the committed state stays.
type Journal struct {
	store  Store
	logger *slog.Logger
}

func NewJournal(store Store, logger *slog.Logger) *Journal {
	return &Journal{store: store, logger: logger}
}

// Store returns the underlying event store.
func (j *Journal) Store() Store {
	return j.store
}

func (j *Journal) Record(ctx context.Context, aggregateID uuid.UUID, aggregateType, eventType string, data any) {
	if err := Record(ctx, j.store, aggregateID, aggregateType, eventType, data); err != nil {
		j.logger.WarnContext(ctx, "journal append failed",
			"aggregate_id", aggregateID,
			"aggregate_type", aggregateType,
			"event_type", eventType,
			"error", err,
		)
	}
}

// History returns every event recorded for an aggregate, oldest first.
func (j *Journal) History(ctx context.Context, aggregateID uuid.UUID) ([]Event, error) {
	return j.store.LoadEvents(ctx, aggregateID, 0, 0)
}
