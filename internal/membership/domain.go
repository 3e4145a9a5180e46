// internal/membership/domain.go
package membership

import (
	"strings"
	"time"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

// User represents a library member.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"nome"`
	Email       Email     `json:"email"`
	Active      bool      `json:"ativo"`
	Credits     float64   `json:"creditos"`
	PendingFees float64   `json:"multas_pendentes"`
	CreatedAt   time.Time `json:"criado_em"`
}

// NewUser validates its input and returns an active user with no credits.
func NewUser(name, email string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("name is required")
	}

	parsed, err := NewEmail(email)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     parsed,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (u *User) Activate() error {
	if u.Active {
		return apperr.InvalidState("user %s is already active", u.ID)
	}
	u.Active = true
	return nil
}

func (u *User) Deactivate() error {
	if !u.Active {
		return apperr.InvalidState("user %s is already inactive", u.ID)
	}
	u.Active = false
	return nil
}

// CanBorrow reports whether the user may take books out.
func (u *User) CanBorrow() bool {
	return u.Active
}

// AddCredits increases the balance. Non-positive amounts are rejected.
func (u *User) AddCredits(amount float64) error {
	if amount <= 0 {
		return apperr.Validation("credit amount must be positive")
	}
	u.Credits += amount
	return nil
}

// SettleFee pays fee from the credit balance when it covers the whole fee.
// Otherwise the balance is untouched, the fee is added to PendingFees and
// false is returned.
func (u *User) SettleFee(fee float64) bool {
	if fee <= 0 {
		return true
	}
	if u.Credits < fee {
		u.PendingFees += fee
		return false
	}
	u.Credits -= fee
	return true
}

// UserRegisteredEvent is journaled when a user registers.
type UserRegisteredEvent struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// UserStatusChangedEvent is journaled when a user is activated or deactivated.
type UserStatusChangedEvent struct {
	ID     uuid.UUID `json:"id"`
	Active bool      `json:"active"`
}

// UserRemovedEvent is journaled when a user is deleted.
type UserRemovedEvent struct {
	ID uuid.UUID `json:"id"`
}
