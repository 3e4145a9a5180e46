// internal/circulation/implementation.go
package circulation

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

const aggregateType = "loan"

// service implements the Service interface.
type service struct {
	loans   Repository
	books   catalog.Repository
	users   membership.Repository
	tx      storage.Transactor
	journal *eventstore.Journal
	now     func() time.Time
	tracer  trace.Tracer

	lent     metric.Int64Counter
	returned metric.Int64Counter
	fees     metric.Float64Counter
}

// Option configures the circulation service.
type Option func(*service)

// WithClock replaces time.Now as the source of loan and return times.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new circulation service instance.
func NewService(
	loans Repository,
	books catalog.Repository,
	users membership.Repository,
	tx storage.Transactor,
	journal *eventstore.Journal,
	opts ...Option,
) Service {
	s := &service{
		loans:   loans,
		books:   books,
		users:   users,
		tx:      tx,
		journal: journal,
		now:     time.Now,
		tracer:  otel.Tracer("biblioteca/circulation"),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter("biblioteca/circulation")
	var err error
	if s.lent, err = meter.Int64Counter("biblioteca.loans.lent",
		metric.WithDescription("Books lent.")); err != nil {
		otel.Handle(err)
	}
	if s.returned, err = meter.Int64Counter("biblioteca.loans.returned",
		metric.WithDescription("Loans returned.")); err != nil {
		otel.Handle(err)
	}
	if s.fees, err = meter.Float64Counter("biblioteca.loans.fees",
		metric.WithDescription("Late fees charged on return.")); err != nil {
		otel.Handle(err)
	}

	return s
}

// LendBook lends an available book to an active user.
func (s *service) LendBook(ctx context.Context, bookID, userID uuid.UUID) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.lend_book", trace.WithAttributes(
		attribute.String("book.id", bookID.String()),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	var loan *Loan
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		book, found, err := s.books.FindByID(ctx, bookID)
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}
		if !found {
			return apperr.NotFound("book %s not found", bookID)
		}

		user, found, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if !found {
			return apperr.NotFound("user %s not found", userID)
		}

		if !user.CanBorrow() {
			return apperr.BusinessRule("user cannot borrow")
		}
		if !book.Available {
			return apperr.BusinessRule("book not available")
		}

		if err := book.Borrow(); err != nil {
			return err
		}

		if loan, err = NewLoan(book.ID, user.ID, s.now()); err != nil {
			return err
		}

		if err := s.books.Save(ctx, book); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}
		if err := s.loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("loan.id", loan.ID.String()))
	s.lent.Add(ctx, 1)
	s.journal.Record(ctx, loan.ID, aggregateType, "LoanOpened", LoanOpenedEvent{
		LoanID: loan.ID,
		BookID: loan.BookID,
		UserID: loan.UserID,
		DueAt:  loan.DueAt,
	})

	return loan, nil
}

// ReturnLoan closes a loan, puts the book back and charges any late fee
// against the user's credits.
func (s *service) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*ReturnReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.return_loan", trace.WithAttributes(
		attribute.String("loan.id", loanID.String()),
	))
	defer span.End()

	var receipt *ReturnReceipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		loan, found, err := s.loans.FindByID(ctx, loanID)
		if err != nil {
			return fmt.Errorf("failed to get loan: %w", err)
		}
		if !found {
			return apperr.NotFound("loan %s not found", loanID)
		}

		book, found, err := s.books.FindByID(ctx, loan.BookID)
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}
		if !found {
			return apperr.NotFound("book %s not found", loan.BookID)
		}

		user, found, err := s.users.FindByID(ctx, loan.UserID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if !found {
			return apperr.NotFound("user %s not found", loan.UserID)
		}

		if err := loan.Return(s.now()); err != nil {
			return err
		}
		if err := book.Return(); err != nil {
			return err
		}

		paid := user.SettleFee(loan.Fee)
		if loan.Fee > 0 {
			if err := s.users.Save(ctx, user); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}
		}

		if err := s.loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		if err := s.books.Save(ctx, book); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}

		receipt = &ReturnReceipt{
			Loan:          loan,
			Fee:           loan.Fee,
			FeePaid:       paid,
			CreditBalance: user.Credits,
			PendingFees:   user.PendingFees,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	loan := receipt.Loan
	span.SetAttributes(
		attribute.Float64("loan.fee", loan.Fee),
		attribute.Bool("loan.fee_paid", receipt.FeePaid),
	)
	s.returned.Add(ctx, 1)
	if loan.Fee > 0 {
		s.fees.Add(ctx, loan.Fee, metric.WithAttributes(attribute.Bool("paid", receipt.FeePaid)))
	}
	s.journal.Record(ctx, loan.ID, aggregateType, "LoanReturned", LoanReturnedEvent{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		UserID:     loan.UserID,
		ReturnedAt: *loan.ReturnedAt,
		Fee:        loan.Fee,
		FeePaid:    receipt.FeePaid,
	})

	return receipt, nil
}

func (s *service) GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	loan, found, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("loan %s not found", id)
	}
	return loan, nil
}

// ListLoans returns the loans matching filter.
func (s *service) ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error) {
	var (
		loans []*Loan
		err   error
	)
	switch {
	case filter.UserID != uuid.Nil:
		loans, err = s.loans.FindByUser(ctx, filter.UserID)
	case filter.BookID != uuid.Nil:
		loans, err = s.loans.FindByBook(ctx, filter.BookID)
	case filter.ActiveOnly:
		loans, err = s.loans.FindActive(ctx)
	default:
		loans, err = s.loans.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	out := loans[:0]
	for _, loan := range loans {
		if filter.matches(loan) {
			out = append(out, loan)
		}
	}
	return out, nil
}

// ListOverdue returns open loans past their due date.
func (s *service) ListOverdue(ctx context.Context) ([]*Loan, error) {
	loans, err := s.loans.FindOverdue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue loans: %w", err)
	}
	return loans, nil
}

// LoanHistory returns the journal of a loan, oldest event first.
func (s *service) LoanHistory(ctx context.Context, id uuid.UUID) ([]eventstore.Event, error) {
	if _, err := s.GetLoan(ctx, id); err != nil {
		return nil, err
	}

	events, err := s.journal.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan history: %w", err)
	}
	return events, nil
}
