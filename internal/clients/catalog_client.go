// internal/clients/catalog_client.go
package clients

import (
	"context"
	"net/http"
	"net/url"

	"biblioteca/internal/catalog"

	"github.com/google/uuid"
)

type CatalogClient struct {
	t *transport
}

func NewCatalogClient(baseURL string, opts ...Option) *CatalogClient {
	return &CatalogClient{t: newTransport(baseURL, opts...)}
}

func (c *CatalogClient) CreateBook(ctx context.Context, title, author, isbn string) (*catalog.Book, error) {
	req := struct {
		Titulo string `json:"titulo"`
		Autor  string `json:"autor"`
		ISBN   string `json:"isbn"`
	}{title, author, isbn}

	var book catalog.Book
	if err := c.t.do(ctx, http.MethodPost, "/livros", req, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *CatalogClient) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var book catalog.Book
	if err := c.t.do(ctx, http.MethodGet, "/livros/"+id.String(), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *CatalogClient) ListBooks(ctx context.Context, onlyAvailable bool) ([]*catalog.Book, error) {
	path := "/livros"
	if onlyAvailable {
		path += "?disponiveis=true"
	}

	var books []*catalog.Book
	if err := c.t.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *CatalogClient) Search(ctx context.Context, query string) ([]*catalog.Book, error) {
	var books []*catalog.Book
	if err := c.t.do(ctx, http.MethodGet, "/livros?q="+url.QueryEscape(query), nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *CatalogClient) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return c.t.do(ctx, http.MethodDelete, "/livros/"+id.String(), nil, nil)
}
