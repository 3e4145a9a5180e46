// internal/donation/repository.go
package donation

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DonationRepository persists book donations.
type DonationRepository interface {
	Save(ctx context.Context, d *Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Donation, bool, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Donation, error)
	FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Donation, error)
	FindAll(ctx context.Context) ([]*Donation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HoursRepository persists volunteer hours.
type HoursRepository interface {
	Save(ctx context.Context, h *Hours) error
	FindByID(ctx context.Context, id uuid.UUID) (*Hours, bool, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Hours, error)
	FindAll(ctx context.Context) ([]*Hours, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemoryDonationRepository struct {
	mu        sync.RWMutex
	donations map[uuid.UUID]Donation
}

var _ DonationRepository = (*MemoryDonationRepository)(nil)

func NewMemoryDonationRepository() *MemoryDonationRepository {
	return &MemoryDonationRepository{donations: make(map[uuid.UUID]Donation)}
}

func (m *MemoryDonationRepository) Save(_ context.Context, d *Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.donations[d.ID] = *d
	return nil
}

func (m *MemoryDonationRepository) FindByID(_ context.Context, id uuid.UUID) (*Donation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.donations[id]
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}

func (m *MemoryDonationRepository) FindByUser(_ context.Context, userID uuid.UUID) ([]*Donation, error) {
	return m.filter(func(d Donation) bool { return d.UserID == userID }), nil
}

func (m *MemoryDonationRepository) FindByBook(_ context.Context, bookID uuid.UUID) ([]*Donation, error) {
	return m.filter(func(d Donation) bool { return d.BookID == bookID }), nil
}

func (m *MemoryDonationRepository) FindAll(_ context.Context) ([]*Donation, error) {
	return m.filter(func(Donation) bool { return true }), nil
}

func (m *MemoryDonationRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.donations, id)
	return nil
}

func (m *MemoryDonationRepository) filter(keep func(Donation) bool) []*Donation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Donation, 0)
	for _, d := range m.donations {
		if keep(d) {
			out = append(out, &d)
		}
	}

	slices.SortFunc(out, func(a, b *Donation) int {
		return a.DonatedAt.Compare(b.DonatedAt)
	})
	return out
}

type MemoryHoursRepository struct {
	mu    sync.RWMutex
	hours map[uuid.UUID]Hours
}

var _ HoursRepository = (*MemoryHoursRepository)(nil)

func NewMemoryHoursRepository() *MemoryHoursRepository {
	return &MemoryHoursRepository{hours: make(map[uuid.UUID]Hours)}
}

func (m *MemoryHoursRepository) Save(_ context.Context, h *Hours) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hours[h.ID] = *h
	return nil
}

func (m *MemoryHoursRepository) FindByID(_ context.Context, id uuid.UUID) (*Hours, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hours[id]
	if !ok {
		return nil, false, nil
	}
	return &h, true, nil
}

func (m *MemoryHoursRepository) FindByUser(_ context.Context, userID uuid.UUID) ([]*Hours, error) {
	return m.filter(func(h Hours) bool { return h.UserID == userID }), nil
}

func (m *MemoryHoursRepository) FindAll(_ context.Context) ([]*Hours, error) {
	return m.filter(func(Hours) bool { return true }), nil
}

func (m *MemoryHoursRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hours, id)
	return nil
}

func (m *MemoryHoursRepository) filter(keep func(Hours) bool) []*Hours {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Hours, 0)
	for _, h := range m.hours {
		if keep(h) {
			out = append(out, &h)
		}
	}

	slices.SortFunc(out, func(a, b *Hours) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})
	return out
}
