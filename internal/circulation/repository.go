// internal/circulation/repository.go
package circulation

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository persists loans. Single lookups report false when nothing matched.
type Repository interface {
	Save(ctx context.Context, loan *Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, bool, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error)
	FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Loan, error)
	FindActive(ctx context.Context) ([]*Loan, error)
	FindOverdue(ctx context.Context, now time.Time) ([]*Loan, error)
	FindAll(ctx context.Context) ([]*Loan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemoryRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]Loan
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{loans: make(map[uuid.UUID]Loan)}
}

func (m *MemoryRepository) Save(_ context.Context, loan *Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *loan
	if loan.ReturnedAt != nil {
		at := *loan.ReturnedAt
		stored.ReturnedAt = &at
	}
	m.loans[loan.ID] = stored
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Loan, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan, ok := m.loans[id]
	if !ok {
		return nil, false, nil
	}
	return copyLoan(loan), true, nil
}

func (m *MemoryRepository) FindByUser(_ context.Context, userID uuid.UUID) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool { return l.UserID == userID }), nil
}

func (m *MemoryRepository) FindByBook(_ context.Context, bookID uuid.UUID) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool { return l.BookID == bookID }), nil
}

func (m *MemoryRepository) FindActive(_ context.Context) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool { return !l.Returned() }), nil
}

func (m *MemoryRepository) FindOverdue(_ context.Context, now time.Time) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool { return l.IsOverdue(now) }), nil
}

func (m *MemoryRepository) FindAll(_ context.Context) ([]*Loan, error) {
	return m.filter(func(*Loan) bool { return true }), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.loans, id)
	return nil
}

func (m *MemoryRepository) filter(keep func(*Loan) bool) []*Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Loan, 0)
	for _, loan := range m.loans {
		if l := copyLoan(loan); keep(l) {
			out = append(out, l)
		}
	}

	slices.SortFunc(out, func(a, b *Loan) int {
		return a.LoanedAt.Compare(b.LoanedAt)
	})
	return out
}

func copyLoan(loan Loan) *Loan {
	if loan.ReturnedAt != nil {
		at := *loan.ReturnedAt
		loan.ReturnedAt = &at
	}
	return &loan
}
