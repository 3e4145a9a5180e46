// internal/circulation/sql_repository.go
package circulation

import (
	"context"
	"fmt"
	"time"

	"biblioteca/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const loansTable = "loans"

// SQLRepository stores loans in the "loans" table.
type SQLRepository struct {
	db *storage.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *storage.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

type loanRow struct {
	ID         string     `db:"id"`
	BookID     string     `db:"book_id"`
	UserID     string     `db:"user_id"`
	LoanedAt   time.Time  `db:"loaned_at"`
	DueAt      time.Time  `db:"due_at"`
	ReturnedAt *time.Time `db:"returned_at"`
	Fee        float64    `db:"fee"`
}

var loanColumns = []interface{}{"id", "book_id", "user_id", "loaned_at", "due_at", "returned_at", "fee"}

func (r loanRow) toLoan() (*Loan, error) {
	var ids [3]uuid.UUID
	for i, raw := range []string{r.ID, r.BookID, r.UserID} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse loan %s: %w", r.ID, err)
		}
		ids[i] = id
	}

	loan := &Loan{
		ID:       ids[0],
		BookID:   ids[1],
		UserID:   ids[2],
		LoanedAt: r.LoanedAt.UTC(),
		DueAt:    r.DueAt.UTC(),
		Fee:      r.Fee,
	}
	if r.ReturnedAt != nil {
		at := r.ReturnedAt.UTC()
		loan.ReturnedAt = &at
	}
	return loan, nil
}

func (s *SQLRepository) Save(ctx context.Context, loan *Loan) error {
	var returnedAt interface{}
	if loan.ReturnedAt != nil {
		returnedAt = *loan.ReturnedAt
	}

	fields := goqu.Record{
		"book_id":     loan.BookID.String(),
		"user_id":     loan.UserID.String(),
		"loaned_at":   loan.LoanedAt,
		"due_at":      loan.DueAt,
		"returned_at": returnedAt,
		"fee":         loan.Fee,
	}

	insert := goqu.Record{"id": loan.ID.String()}
	for k, v := range fields {
		insert[k] = v
	}

	return s.db.Upsert(ctx, "save_loan",
		s.db.Update(loansTable).Set(fields).Where(goqu.C("id").Eq(loan.ID.String())),
		s.db.Insert(loansTable).Rows(insert),
	)
}

func (s *SQLRepository) FindByID(ctx context.Context, id uuid.UUID) (*Loan, bool, error) {
	var row loanRow
	ds := s.db.From(loansTable).Select(loanColumns...).Where(goqu.C("id").Eq(id.String()))
	found, err := s.db.Get(ctx, "find_loan_by_id", &row, ds)
	if err != nil || !found {
		return nil, false, err
	}

	loan, err := row.toLoan()
	if err != nil {
		return nil, false, err
	}
	return loan, true, nil
}

func (s *SQLRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error) {
	return s.findMany(ctx, "find_loans_by_user", goqu.C("user_id").Eq(userID.String()))
}

func (s *SQLRepository) FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Loan, error) {
	return s.findMany(ctx, "find_loans_by_book", goqu.C("book_id").Eq(bookID.String()))
}

func (s *SQLRepository) FindActive(ctx context.Context) ([]*Loan, error) {
	return s.findMany(ctx, "find_active_loans", goqu.C("returned_at").IsNull())
}

func (s *SQLRepository) FindOverdue(ctx context.Context, now time.Time) ([]*Loan, error) {
	return s.findMany(ctx, "find_overdue_loans",
		goqu.C("returned_at").IsNull(),
		goqu.C("due_at").Lt(now.UTC()),
	)
}

func (s *SQLRepository) FindAll(ctx context.Context) ([]*Loan, error) {
	return s.findMany(ctx, "find_loans")
}

func (s *SQLRepository) findMany(ctx context.Context, name string, where ...goqu.Expression) ([]*Loan, error) {
	ds := s.db.From(loansTable).Select(loanColumns...).Order(goqu.C("loaned_at").Asc())
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	var rows []loanRow
	if err := s.db.Select(ctx, name, &rows, ds); err != nil {
		return nil, err
	}

	loans := make([]*Loan, 0, len(rows))
	for _, row := range rows {
		loan, err := row.toLoan()
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (s *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "delete_loan", s.db.Delete(loansTable).Where(goqu.C("id").Eq(id.String())))
	return err
}
