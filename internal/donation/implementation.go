// internal/donation/implementation.go
package donation

import (
	"context"
	"fmt"
	"time"

	"biblioteca/internal/apperr"
	"biblioteca/internal/catalog"
	"biblioteca/internal/membership"
	"biblioteca/internal/storage"
	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// service implements the Service interface.
type service struct {
	donations DonationRepository
	hours     HoursRepository
	books     catalog.Repository
	users     membership.Repository
	tx        storage.Transactor
	journal   *eventstore.Journal
	now       func() time.Time
	tracer    trace.Tracer
	credits   metric.Float64Counter
}

type Option func(*service)

// WithClock replaces time.Now as the source of donation times.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new donation service instance.
func NewService(
	donations DonationRepository,
	hours HoursRepository,
	books catalog.Repository,
	users membership.Repository,
	tx storage.Transactor,
	journal *eventstore.Journal,
	opts ...Option,
) Service {
	s := &service{
		donations: donations,
		hours:     hours,
		books:     books,
		users:     users,
		tx:        tx,
		journal:   journal,
		now:       time.Now,
		tracer:    otel.Tracer("biblioteca/donation"),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.credits, err = otel.Meter("biblioteca/donation").Float64Counter("biblioteca.credits.granted",
		metric.WithDescription("Credits granted for donations and volunteer hours.")); err != nil {
		otel.Handle(err)
	}

	return s
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*membership.User, error) {
	user, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return user, nil
}

func (s *service) credit(ctx context.Context, user *membership.User, amount float64) error {
	if err := user.AddCredits(amount); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// DonateBook records a donated book and credits the donor.
func (s *service) DonateBook(ctx context.Context, bookID, userID uuid.UUID) (*DonationReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "donation.donate_book", trace.WithAttributes(
		attribute.String("book.id", bookID.String()),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	var receipt *DonationReceipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, found, err := s.books.FindByID(ctx, bookID)
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}
		if !found {
			return apperr.NotFound("book %s not found", bookID)
		}

		user, err := s.findUser(ctx, userID)
		if err != nil {
			return err
		}

		donation, err := NewDonation(bookID, userID, s.now())
		if err != nil {
			return err
		}
		if err := s.donations.Save(ctx, donation); err != nil {
			return fmt.Errorf("failed to save donation: %w", err)
		}
		if err := s.credit(ctx, user, donation.Credits); err != nil {
			return err
		}

		receipt = &DonationReceipt{Donation: donation, CreditBalance: user.Credits}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	d := receipt.Donation
	s.credits.Add(ctx, d.Credits, metric.WithAttributes(attribute.String("source", "book")))
	s.journal.Record(ctx, d.ID, "donation", "BookDonated", BookDonatedEvent{
		DonationID: d.ID,
		BookID:     d.BookID,
		UserID:     d.UserID,
		Credits:    d.Credits,
	})

	return receipt, nil
}

// DonateHours records volunteer hours and credits the volunteer by activity type.
func (s *service) DonateHours(ctx context.Context, userID uuid.UUID, hours float64, activity string) (*HoursReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "donation.donate_hours", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Float64("hours", hours),
		attribute.String("activity", activity),
	))
	defer span.End()

	var receipt *HoursReceipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.findUser(ctx, userID)
		if err != nil {
			return err
		}

		record, err := NewHours(userID, hours, activity, s.now())
		if err != nil {
			return err
		}
		if err := s.hours.Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save hours: %w", err)
		}
		if err := s.credit(ctx, user, record.Credits); err != nil {
			return err
		}

		receipt = &HoursReceipt{Hours: record, CreditBalance: user.Credits}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	h := receipt.Hours
	s.credits.Add(ctx, h.Credits, metric.WithAttributes(attribute.String("source", "hours")))
	s.journal.Record(ctx, h.ID, "hours", "HoursDonated", HoursDonatedEvent{
		HoursID:  h.ID,
		UserID:   h.UserID,
		Hours:    h.Hours,
		Activity: h.Activity,
		Credits:  h.Credits,
	})

	return receipt, nil
}

func (s *service) ListDonations(ctx context.Context, userID uuid.UUID) ([]*Donation, error) {
	var (
		out []*Donation
		err error
	)
	if userID == uuid.Nil {
		out, err = s.donations.FindAll(ctx)
	} else {
		out, err = s.donations.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return out, nil
}

func (s *service) ListHours(ctx context.Context, userID uuid.UUID) ([]*Hours, error) {
	var (
		out []*Hours
		err error
	)
	if userID == uuid.Nil {
		out, err = s.hours.FindAll(ctx)
	} else {
		out, err = s.hours.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list hours: %w", err)
	}
	return out, nil
}
