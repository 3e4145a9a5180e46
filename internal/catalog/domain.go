// internal/catalog/domain.go
package catalog

import (
	"strings"
	"time"

	"biblioteca/internal/apperr"

	"github.com/google/uuid"
)

// Book is a single copy of a title held by the library.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"titulo"`
	Author    string    `json:"autor"`
	ISBN      ISBN      `json:"isbn"`
	Available bool      `json:"disponivel"`
	CreatedAt time.Time `json:"criado_em"`
}

// NewBook validates its input and returns an available book.
func NewBook(title, author, isbn string) (*Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.TrimSpace(author) == "" {
		return nil, apperr.Validation("author is required")
	}

	parsed, err := NewISBN(isbn)
	if err != nil {
		return nil, err
	}

	return &Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		ISBN:      parsed,
		Available: true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Borrow marks the book as lent out.
func (b *Book) Borrow() error {
	if !b.Available {
		return apperr.InvalidState("book %s is not available", b.ID)
	}
	b.Available = false
	return nil
}

// Return puts the book back on the shelf. Returning a book that is already
// available is an error.
func (b *Book) Return() error {
	if b.Available {
		return apperr.InvalidState("book %s is already available", b.ID)
	}
	b.Available = true
	return nil
}

// BookAddedEvent is journaled when a book enters the catalog.
type BookAddedEvent struct {
	ID     uuid.UUID `json:"id"`
	ISBN   string    `json:"isbn"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
}

// BookRemovedEvent is journaled when a book leaves the catalog.
type BookRemovedEvent struct {
	ID uuid.UUID `json:"id"`
}
