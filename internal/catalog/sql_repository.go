// internal/catalog/sql_repository.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"biblioteca/internal/apperr"
	"biblioteca/internal/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const booksTable = "books"

// SQLRepository stores books in the "books" table.
type SQLRepository struct {
	db *storage.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *storage.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

type bookRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Author         string    `db:"author"`
	ISBN           string    `db:"isbn"`
	ISBNNormalized string    `db:"isbn_normalized"`
	Available      bool      `db:"available"`
	CreatedAt      time.Time `db:"created_at"`
}

var bookColumns = []interface{}{"id", "title", "author", "isbn", "isbn_normalized", "available", "created_at"}

func (r bookRow) toBook() (*Book, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse book id %q: %w", r.ID, err)
	}
	isbn, err := NewISBN(r.ISBN)
	if err != nil {
		return nil, fmt.Errorf("stored isbn of book %s: %w", r.ID, err)
	}

	return &Book{
		ID:        id,
		Title:     r.Title,
		Author:    r.Author,
		ISBN:      isbn,
		Available: r.Available,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

func (s *SQLRepository) Save(ctx context.Context, book *Book) error {
	if book.ISBN.IsZero() {
		return apperr.Validation("book %s has no isbn", book.ID)
	}

	fields := goqu.Record{
		"title":           book.Title,
		"author":          book.Author,
		"isbn":            book.ISBN.String(),
		"isbn_normalized": book.ISBN.Normalized(),
		"available":       book.Available,
	}

	insert := goqu.Record{"id": book.ID.String(), "created_at": book.CreatedAt}
	for k, v := range fields {
		insert[k] = v
	}

	err := s.db.Upsert(ctx, "save_book",
		s.db.Update(booksTable).Set(fields).Where(goqu.C("id").Eq(book.ID.String())),
		s.db.Insert(booksTable).Rows(insert),
	)
	if storage.IsUniqueViolation(err) {
		return apperr.BusinessRule("a book with isbn %s already exists", book.ISBN)
	}
	return err
}

func (s *SQLRepository) findOne(ctx context.Context, name string, where goqu.Expression) (*Book, bool, error) {
	var row bookRow
	found, err := s.db.Get(ctx, name, &row, s.db.From(booksTable).Select(bookColumns...).Where(where))
	if err != nil || !found {
		return nil, false, err
	}

	book, err := row.toBook()
	if err != nil {
		return nil, false, err
	}
	return book, true, nil
}

func (s *SQLRepository) FindByID(ctx context.Context, id uuid.UUID) (*Book, bool, error) {
	return s.findOne(ctx, "find_book_by_id", goqu.C("id").Eq(id.String()))
}

func (s *SQLRepository) FindByISBN(ctx context.Context, isbn ISBN) (*Book, bool, error) {
	return s.findOne(ctx, "find_book_by_isbn", goqu.C("isbn_normalized").Eq(isbn.Normalized()))
}

func (s *SQLRepository) FindAll(ctx context.Context) ([]*Book, error) {
	return s.findMany(ctx, "find_books", s.db.From(booksTable))
}

func (s *SQLRepository) FindAvailable(ctx context.Context) ([]*Book, error) {
	return s.findMany(ctx, "find_available_books", s.db.From(booksTable).Where(goqu.C("available").IsTrue()))
}

func (s *SQLRepository) findMany(ctx context.Context, name string, ds *goqu.SelectDataset) ([]*Book, error) {
	var rows []bookRow
	if err := s.db.Select(ctx, name, &rows, ds.Select(bookColumns...).Order(goqu.C("created_at").Asc())); err != nil {
		return nil, err
	}

	books := make([]*Book, 0, len(rows))
	for _, row := range rows {
		book, err := row.toBook()
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

func (s *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "delete_book", s.db.Delete(booksTable).Where(goqu.C("id").Eq(id.String())))
	return err
}
