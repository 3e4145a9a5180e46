// internal/membership/sql_repository.go
package membership

import (
	"context"
	"fmt"
	"time"

	"biblioteca/internal/apperr"
	"biblioteca/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const usersTable = "users"

// SQLRepository stores users in the "users" table.
type SQLRepository struct {
	db *storage.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *storage.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

type userRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Active      bool      `db:"active"`
	Credits     float64   `db:"credits"`
	PendingFees float64   `db:"pending_fees"`
	CreatedAt   time.Time `db:"created_at"`
}

var userColumns = []interface{}{"id", "name", "email", "active", "credits", "pending_fees", "created_at"}

func (r userRow) toUser() (*User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", r.ID, err)
	}
	email, err := NewEmail(r.Email)
	if err != nil {
		return nil, fmt.Errorf("stored email of user %s: %w", r.ID, err)
	}

	return &User{
		ID:          id,
		Name:        r.Name,
		Email:       email,
		Active:      r.Active,
		Credits:     r.Credits,
		PendingFees: r.PendingFees,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}

func (s *SQLRepository) Save(ctx context.Context, user *User) error {
	if user.Email.IsZero() {
		return apperr.Validation("user %s has no email", user.ID)
	}

	fields := goqu.Record{
		"name":         user.Name,
		"email":        user.Email.String(),
		"active":       user.Active,
		"credits":      user.Credits,
		"pending_fees": user.PendingFees,
	}

	insert := goqu.Record{"id": user.ID.String(), "created_at": user.CreatedAt}
	for k, v := range fields {
		insert[k] = v
	}

	err := s.db.Upsert(ctx, "save_user",
		s.db.Update(usersTable).Set(fields).Where(goqu.C("id").Eq(user.ID.String())),
		s.db.Insert(usersTable).Rows(insert),
	)
	if storage.IsUniqueViolation(err) {
		return apperr.BusinessRule("email %s is already registered", user.Email)
	}
	return err
}

func (s *SQLRepository) findOne(ctx context.Context, name string, where goqu.Expression) (*User, bool, error) {
	var row userRow
	found, err := s.db.Get(ctx, name, &row, s.db.From(usersTable).Select(userColumns...).Where(where))
	if err != nil || !found {
		return nil, false, err
	}

	user, err := row.toUser()
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *SQLRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, bool, error) {
	return s.findOne(ctx, "find_user_by_id", goqu.C("id").Eq(id.String()))
}

func (s *SQLRepository) FindByEmail(ctx context.Context, email Email) (*User, bool, error) {
	return s.findOne(ctx, "find_user_by_email", goqu.C("email").Eq(email.String()))
}

func (s *SQLRepository) FindAll(ctx context.Context) ([]*User, error) {
	var rows []userRow
	ds := s.db.From(usersTable).Select(userColumns...).Order(goqu.C("created_at").Asc())
	if err := s.db.Select(ctx, "find_users", &rows, ds); err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "delete_user", s.db.Delete(usersTable).Where(goqu.C("id").Eq(id.String())))
	return err
}
