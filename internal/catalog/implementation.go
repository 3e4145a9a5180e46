// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"

	"biblioteca/internal/apperr"
	"biblioteca/internal/storage"
	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const aggregateType = "book"

// service implements the Service interface.
type service struct {
	books   Repository
	tx      storage.Transactor
	journal *eventstore.Journal
	tracer  trace.Tracer
}

// NewService creates a new catalog service instance.
func NewService(books Repository, tx storage.Transactor, journal *eventstore.Journal) Service {
	return &service{
		books:   books,
		tx:      tx,
		journal: journal,
		tracer:  otel.Tracer("biblioteca/catalog"),
	}
}

// CreateBook adds a book to the catalog. ISBNs are unique.
func (s *service) CreateBook(ctx context.Context, title, author, isbn string) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.create_book", trace.WithAttributes(
		attribute.String("book.isbn", isbn),
	))
	defer span.End()

	book, err := NewBook(title, author, isbn)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, exists, err := s.books.FindByISBN(ctx, book.ISBN)
		if err != nil {
			return fmt.Errorf("failed to look up isbn: %w", err)
		}
		if exists {
			return apperr.BusinessRule("a book with isbn %s already exists", book.ISBN)
		}

		if err := s.books.Save(ctx, book); err != nil {
			return fmt.Errorf("failed to save book: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("book.id", book.ID.String()))
	s.journal.Record(ctx, book.ID, aggregateType, "BookAdded", BookAddedEvent{
		ID:     book.ID,
		ISBN:   book.ISBN.String(),
		Title:  book.Title,
		Author: book.Author,
	})

	return book, nil
}

// GetBook retrieves a book from the catalog by its ID.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	book, found, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("book %s not found", id)
	}
	return book, nil
}

// ListBooks returns the whole catalog or only the books on the shelf.
func (s *service) ListBooks(ctx context.Context, onlyAvailable bool) ([]*Book, error) {
	var (
		books []*Book
		err   error
	)
	if onlyAvailable {
		books, err = s.books.FindAvailable(ctx)
	} else {
		books, err = s.books.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// Search finds books whose title or author contains query, ignoring case,
// or whose ISBN starts with query, ignoring hyphens.
func (s *service) Search(ctx context.Context, query string) ([]*Book, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}

	books, err := s.books.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	isbnQuery := strings.ToUpper(strings.ReplaceAll(query, "-", ""))

	matches := make([]*Book, 0)
	for _, book := range books {
		if strings.Contains(strings.ToLower(book.Title), query) ||
			strings.Contains(strings.ToLower(book.Author), query) ||
			(isbnQuery != "" && strings.HasPrefix(book.ISBN.Normalized(), isbnQuery)) {
			matches = append(matches, book)
		}
	}
	return matches, nil
}

// DeleteBook removes a book. Books currently lent out cannot be removed.
func (s *service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "catalog.delete_book", trace.WithAttributes(
		attribute.String("book.id", id.String()),
	))
	defer span.End()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		book, found, err := s.books.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}
		if !found {
			return apperr.NotFound("book %s not found", id)
		}
		if !book.Available {
			return apperr.BusinessRule("book %s is on loan", id)
		}

		if err := s.books.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.journal.Record(ctx, id, aggregateType, "BookRemoved", BookRemovedEvent{ID: id})
	return nil
}
