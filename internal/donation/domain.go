// internal/donation/domain.go
package donation

import (
	"strings"
	"time"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

// DonationCredits is the flat amount credited for every donated book.
const DonationCredits = 20.0

// Activity types with their own credit rate. Any other activity earns the default rate.
const (
	ActivityOrganization = "organização"
	ActivityLecture      = "palestra"
)

var creditsPerHour = map[string]float64{
	ActivityOrganization: 5,
	ActivityLecture:      10,
}

const defaultCreditsPerHour = 2.0

// CreditsPerHour returns the credit multiplier for an activity type.
func CreditsPerHour(activity string) float64 {
	if rate, ok := creditsPerHour[activity]; ok {
		return rate
	}
	return defaultCreditsPerHour
}

// Donation records a book given to the library.
type Donation struct {
	ID        uuid.UUID `json:"id"`
	BookID    uuid.UUID `json:"livro_id"`
	UserID    uuid.UUID `json:"usuario_id"`
	DonatedAt time.Time `json:"data_doacao"`
	Credits   float64   `json:"creditos"`
}

func NewDonation(bookID, userID uuid.UUID, at time.Time) (*Donation, error) {
	if bookID == uuid.Nil {
		return nil, apperr.Validation("book id is required")
	}
	if userID == uuid.Nil {
		return nil, apperr.Validation("user id is required")
	}

	return &Donation{
		ID:        uuid.New(),
		BookID:    bookID,
		UserID:    userID,
		DonatedAt: at.UTC(),
		Credits:   DonationCredits,
	}, nil
}

// Hours records volunteer time given to the library.
type Hours struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"usuario_id"`
	Hours      float64   `json:"horas"`
	Activity   string    `json:"tipo"`
	RecordedAt time.Time `json:"data"`
	Credits    float64   `json:"creditos"`
}

func NewHours(userID uuid.UUID, hours float64, activity string, at time.Time) (*Hours, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user id is required")
	}
	if hours <= 0 {
		return nil, apperr.Validation("hours must be positive")
	}
	activity = strings.TrimSpace(activity)

	return &Hours{
		ID:         uuid.New(),
		UserID:     userID,
		Hours:      hours,
		Activity:   activity,
		RecordedAt: at.UTC(),
		Credits:    hours * CreditsPerHour(activity),
	}, nil
}

// BookDonatedEvent is journaled for every donation.
type BookDonatedEvent struct {
	DonationID uuid.UUID `json:"donation_id"`
	BookID     uuid.UUID `json:"book_id"`
	UserID     uuid.UUID `json:"user_id"`
	Credits    float64   `json:"credits"`
}

// HoursDonatedEvent is journaled for every volunteer hours record.
type HoursDonatedEvent struct {
	HoursID  uuid.UUID `json:"hours_id"`
	UserID   uuid.UUID `json:"user_id"`
	Hours    float64   `json:"hours"`
	Activity string    `json:"activity"`
	Credits  float64   `json:"credits"`
}
