// internal/circulation/service.go
package circulation

import (
	"context"

	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
)

// Service defines the interface for the circulation service.
type Service interface {
	LendBook(ctx context.Context, bookID, userID uuid.UUID) (*Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID) (*ReturnReceipt, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	ListLoans(ctx context.Context, filter LoanFilter) ([]*Loan, error)
	ListOverdue(ctx context.Context) ([]*Loan, error)
	LoanHistory(ctx context.Context, id uuid.UUID) ([]eventstore.Event, error)
}
