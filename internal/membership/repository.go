// internal/membership/repository.go
package membership

import (
	"context"
	"slices"
	"sync"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

// Repository persists users. Single lookups report false when nothing matched.
type Repository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, bool, error)
	FindByEmail(ctx context.Context, email Email) (*User, bool, error)
	FindAll(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]User)}
}

func (m *MemoryRepository) Save(_ context.Context, user *User) error {
	if user.Email.IsZero() {
		return apperr.Validation("user %s has no email", user.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = *user
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email Email) (*User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return &user, true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryRepository) FindAll(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, &user)
	}
	slices.SortFunc(out, func(a, b *User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)
	return nil
}
