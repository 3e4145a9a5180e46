// internal/donation/sql_repository.go
package donation

import (
	"context"
	"fmt"
	"time"

	"biblioteca/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	donationsTable = "donations"
	hoursTable     = "volunteer_hours"
)

// SQLDonationRepository stores donations in the "donations" table.
type SQLDonationRepository struct {
	db *storage.DB
}

var _ DonationRepository = (*SQLDonationRepository)(nil)

func NewSQLDonationRepository(db *storage.DB) *SQLDonationRepository {
	return &SQLDonationRepository{db: db}
}

type donationRow struct {
	ID        string    `db:"id"`
	BookID    string    `db:"book_id"`
	UserID    string    `db:"user_id"`
	DonatedAt time.Time `db:"donated_at"`
	Credits   float64   `db:"credits"`
}

var donationColumns = []interface{}{"id", "book_id", "user_id", "donated_at", "credits"}

func parseIDs(raw ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (r donationRow) toDonation() (*Donation, error) {
	ids, err := parseIDs(r.ID, r.BookID, r.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse donation %s: %w", r.ID, err)
	}
	return &Donation{
		ID:        ids[0],
		BookID:    ids[1],
		UserID:    ids[2],
		DonatedAt: r.DonatedAt.UTC(),
		Credits:   r.Credits,
	}, nil
}

func (s *SQLDonationRepository) Save(ctx context.Context, d *Donation) error {
	fields := goqu.Record{
		"book_id":    d.BookID.String(),
		"user_id":    d.UserID.String(),
		"donated_at": d.DonatedAt,
		"credits":    d.Credits,
	}
	insert := goqu.Record{"id": d.ID.String()}
	for k, v := range fields {
		insert[k] = v
	}

	return s.db.Upsert(ctx, "save_donation",
		s.db.Update(donationsTable).Set(fields).Where(goqu.C("id").Eq(d.ID.String())),
		s.db.Insert(donationsTable).Rows(insert),
	)
}

func (s *SQLDonationRepository) FindByID(ctx context.Context, id uuid.UUID) (*Donation, bool, error) {
	var row donationRow
	ds := s.db.From(donationsTable).Select(donationColumns...).Where(goqu.C("id").Eq(id.String()))
	found, err := s.db.Get(ctx, "find_donation_by_id", &row, ds)
	if err != nil || !found {
		return nil, false, err
	}

	d, err := row.toDonation()
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (s *SQLDonationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Donation, error) {
	return s.findMany(ctx, "find_donations_by_user", goqu.C("user_id").Eq(userID.String()))
}

func (s *SQLDonationRepository) FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Donation, error) {
	return s.findMany(ctx, "find_donations_by_book", goqu.C("book_id").Eq(bookID.String()))
}

func (s *SQLDonationRepository) FindAll(ctx context.Context) ([]*Donation, error) {
	return s.findMany(ctx, "find_donations")
}

func (s *SQLDonationRepository) findMany(ctx context.Context, name string, where ...goqu.Expression) ([]*Donation, error) {
	ds := s.db.From(donationsTable).Select(donationColumns...).Order(goqu.C("donated_at").Asc())
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	var rows []donationRow
	if err := s.db.Select(ctx, name, &rows, ds); err != nil {
		return nil, err
	}

	out := make([]*Donation, 0, len(rows))
	for _, row := range rows {
		d, err := row.toDonation()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SQLDonationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "delete_donation", s.db.Delete(donationsTable).Where(goqu.C("id").Eq(id.String())))
	return err
}

// SQLHoursRepository stores volunteer hours in the "volunteer_hours" table.
type SQLHoursRepository struct {
	db *storage.DB
}

var _ HoursRepository = (*SQLHoursRepository)(nil)

func NewSQLHoursRepository(db *storage.DB) *SQLHoursRepository {
	return &SQLHoursRepository{db: db}
}

type hoursRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Hours      float64   `db:"hours"`
	Activity   string    `db:"activity"`
	RecordedAt time.Time `db:"recorded_at"`
	Credits    float64   `db:"credits"`
}

var hoursColumns = []interface{}{"id", "user_id", "hours", "activity", "recorded_at", "credits"}

func (r hoursRow) toHours() (*Hours, error) {
	ids, err := parseIDs(r.ID, r.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse hours %s: %w", r.ID, err)
	}
	return &Hours{
		ID:         ids[0],
		UserID:     ids[1],
		Hours:      r.Hours,
		Activity:   r.Activity,
		RecordedAt: r.RecordedAt.UTC(),
		Credits:    r.Credits,
	}, nil
}

func (s *SQLHoursRepository) Save(ctx context.Context, h *Hours) error {
	fields := goqu.Record{
		"user_id":     h.UserID.String(),
		"hours":       h.Hours,
		"activity":    h.Activity,
		"recorded_at": h.RecordedAt,
		"credits":     h.Credits,
	}
	insert := goqu.Record{"id": h.ID.String()}
	for k, v := range fields {
		insert[k] = v
	}

	return s.db.Upsert(ctx, "save_hours",
		s.db.Update(hoursTable).Set(fields).Where(goqu.C("id").Eq(h.ID.String())),
		s.db.Insert(hoursTable).Rows(insert),
	)
}

func (s *SQLHoursRepository) FindByID(ctx context.Context, id uuid.UUID) (*Hours, bool, error) {
	var row hoursRow
	ds := s.db.From(hoursTable).Select(hoursColumns...).Where(goqu.C("id").Eq(id.String()))
	found, err := s.db.Get(ctx, "find_hours_by_id", &row, ds)
	if err != nil || !found {
		return nil, false, err
	}

	h, err := row.toHours()
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

func (s *SQLHoursRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Hours, error) {
	return s.findMany(ctx, "find_hours_by_user", goqu.C("user_id").Eq(userID.String()))
}

func (s *SQLHoursRepository) FindAll(ctx context.Context) ([]*Hours, error) {
	return s.findMany(ctx, "find_hours")
}

func (s *SQLHoursRepository) findMany(ctx context.Context, name string, where ...goqu.Expression) ([]*Hours, error) {
	ds := s.db.From(hoursTable).Select(hoursColumns...).Order(goqu.C("recorded_at").Asc())
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	var rows []hoursRow
	if err := s.db.Select(ctx, name, &rows, ds); err != nil {
		return nil, err
	}

	out := make([]*Hours, 0, len(rows))
	for _, row := range rows {
		h, err := row.toHours()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *SQLHoursRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "delete_hours", s.db.Delete(hoursTable).Where(goqu.C("id").Eq(id.String())))
	return err
}
