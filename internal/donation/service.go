// internal/donation/service.go
package donation

import (
	"context"

	"github.com/google/uuid"
)

// DonationReceipt is the outcome of a book donation.
type DonationReceipt struct {
	Donation      *Donation `json:"doacao"`
	CreditBalance float64   `json:"saldo_creditos"`
}

// HoursReceipt is the outcome of registering volunteer hours.
type HoursReceipt struct {
	Hours         *Hours  `json:"horas"`
	CreditBalance float64 `json:"saldo_creditos"`
}

// Service defines the interface for the donation service.
type Service interface {
	DonateBook(ctx context.Context, bookID, userID uuid.UUID) (*DonationReceipt, error)
	DonateHours(ctx context.Context, userID uuid.UUID, hours float64, activity string) (*HoursReceipt, error)
	// ListDonations returns the donations of one user, or all of them for uuid.Nil.
	ListDonations(ctx context.Context, userID uuid.UUID) ([]*Donation, error)
	ListHours(ctx context.Context, userID uuid.UUID) ([]*Hours, error)
}
