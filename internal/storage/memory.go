// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
)

// MemoryTransactor serializes use cases over in-memory repositories.
// It offers isolation only: writes made before a failure are not rolled back.
type MemoryTransactor struct {
	mu sync.Mutex
}

var _ Transactor = (*MemoryTransactor)(nil)

type memoryTxKey struct{}

func NewMemoryTransactor() *MemoryTransactor {
	return &MemoryTransactor{}
}

func (t *MemoryTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx, _ := ctx.Value(memoryTxKey{}).(bool); inTx {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(context.WithValue(ctx, memoryTxKey{}, true))
}
