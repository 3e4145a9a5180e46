// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service.
type Service interface {
	CreateBook(ctx context.Context, title, author, isbn string) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context, onlyAvailable bool) ([]*Book, error)
	Search(ctx context.Context, query string) ([]*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
