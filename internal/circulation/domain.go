// internal/circulation/domain.go
package circulation

import (
	"time"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

const (
	// LoanPeriod is the time a user may keep a book.
	LoanPeriod = 14 * 24 * time.Hour
	// DailyFee is charged for every whole day past the due date.
	DailyFee = 1.0
)

const day = 24 * time.Hour

// Loan records one book lent to one user.
type Loan struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"livro_id"`
	UserID     uuid.UUID  `json:"usuario_id"`
	LoanedAt   time.Time  `json:"data_emprestimo"`
	DueAt      time.Time  `json:"data_devolucao_prevista"`
	ReturnedAt *time.Time `json:"data_devolucao_real"`
	Fee        float64    `json:"multa"`
}

// NewLoan starts a loan at loanedAt, due LoanPeriod later.
func NewLoan(bookID, userID uuid.UUID, loanedAt time.Time) (*Loan, error) {
	if bookID == uuid.Nil {
		return nil, apperr.Validation("book id is required")
	}
	if userID == uuid.Nil {
		return nil, apperr.Validation("user id is required")
	}

	loanedAt = loanedAt.UTC()
	return &Loan{
		ID:       uuid.New(),
		BookID:   bookID,
		UserID:   userID,
		LoanedAt: loanedAt,
		DueAt:    loanedAt.Add(LoanPeriod),
	}, nil
}

func (l *Loan) Returned() bool {
	return l.ReturnedAt != nil
}

// Return closes the loan at the given time and computes the late fee.
// A loan can be returned only once.
func (l *Loan) Return(at time.Time) error {
	if l.Returned() {
		return apperr.BusinessRule("loan %s was already returned", l.ID)
	}

	at = at.UTC()
	l.ReturnedAt = &at
	l.Fee = float64(wholeDaysAfter(l.DueAt, at)) * DailyFee
	return nil
}

// IsOverdue reports whether the loan is still open past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return !l.Returned() && now.After(l.DueAt)
}

// DaysOverdue is the number of whole days an open loan is past due.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return wholeDaysAfter(l.DueAt, now)
}

func wholeDaysAfter(due, t time.Time) int {
	if !t.After(due) {
		return 0
	}
	return int(t.Sub(due) / day)
}

// ReturnReceipt is the outcome of returning a loan. FeePaid tells whether the
// fee was debited from the user's credits or added to their pending fees.
type ReturnReceipt struct {
	Loan          *Loan   `json:"emprestimo"`
	Fee           float64 `json:"multa"`
	FeePaid       bool    `json:"multa_paga"`
	CreditBalance float64 `json:"saldo_creditos"`
	PendingFees   float64 `json:"multas_pendentes"`
}

// LoanFilter narrows ListLoans. Zero fields match everything.
type LoanFilter struct {
	UserID     uuid.UUID
	BookID     uuid.UUID
	ActiveOnly bool
}

func (f LoanFilter) matches(l *Loan) bool {
	if f.UserID != uuid.Nil && l.UserID != f.UserID {
		return false
	}
	if f.BookID != uuid.Nil && l.BookID != f.BookID {
		return false
	}
	if f.ActiveOnly && l.Returned() {
		return false
	}
	return true
}

// LoanOpenedEvent is journaled when a book is lent.
type LoanOpenedEvent struct {
	LoanID uuid.UUID `json:"loan_id"`
	BookID uuid.UUID `json:"book_id"`
	UserID uuid.UUID `json:"user_id"`
	DueAt  time.Time `json:"due_at"`
}

// LoanReturnedEvent is journaled when a loan is closed.
type LoanReturnedEvent struct {
	LoanID     uuid.UUID `json:"loan_id"`
	BookID     uuid.UUID `json:"book_id"`
	UserID     uuid.UUID `json:"user_id"`
	ReturnedAt time.Time `json:"returned_at"`
	Fee        float64   `json:"fee"`
	FeePaid    bool      `json:"fee_paid"`
}
