// internal/catalog/repository.go
package catalog

import (
	"context"
	"slices"
	"sync"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

// Repository persists books. Single lookups report false when nothing matched.
type Repository interface {
	Save(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*Book, bool, error)
	FindByISBN(ctx context.Context, isbn ISBN) (*Book, bool, error)
	FindAll(ctx context.Context) ([]*Book, error)
	FindAvailable(ctx context.Context) ([]*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryRepository keeps books in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]Book
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[uuid.UUID]Book)}
}

func (m *MemoryRepository) Save(_ context.Context, book *Book) error {
	if book.ISBN.IsZero() {
		return apperr.Validation("book %s has no isbn", book.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[book.ID] = *book
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, false, nil
	}
	return &book, true, nil
}

func (m *MemoryRepository) FindByISBN(_ context.Context, isbn ISBN) (*Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, book := range m.books {
		if book.ISBN.Equal(isbn) {
			return &book, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) FindAll(_ context.Context) ([]*Book, error) {
	return m.filter(func(Book) bool { return true }), nil
}

func (m *MemoryRepository) FindAvailable(_ context.Context) ([]*Book, error) {
	return m.filter(func(b Book) bool { return b.Available }), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.books, id)
	return nil
}

func (m *MemoryRepository) filter(keep func(Book) bool) []*Book {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Book, 0, len(m.books))
	for _, book := range m.books {
		if keep(book) {
			out = append(out, &book)
		}
	}

	slices.SortFunc(out, func(a, b *Book) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}
