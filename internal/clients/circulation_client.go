// internal/clients/circulation_client.go
package clients

import (
	"context"
	"net/http"
	"net/url"

	"biblioteca/internal/circulation"
	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
)

type CirculationClient struct {
	t *transport
}

func NewCirculationClient(baseURL string, opts ...Option) *CirculationClient {
	return &CirculationClient{t: newTransport(baseURL, opts...)}
}

// LoanStatus is a loan as the API reports it, with its overdue state at response time.
type LoanStatus struct {
	circulation.Loan
	Overdue     bool `json:"atrasado"`
	DaysOverdue int  `json:"dias_atraso"`
}

func (c *CirculationClient) LendBook(ctx context.Context, bookID, userID uuid.UUID) (*LoanStatus, error) {
	req := struct {
		LivroID   string `json:"livro_id"`
		UsuarioID string `json:"usuario_id"`
	}{bookID.String(), userID.String()}

	var loan LoanStatus
	if err := c.t.do(ctx, http.MethodPost, "/emprestimos", req, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *CirculationClient) ReturnLoan(ctx context.Context, loanID uuid.UUID) (*circulation.ReturnReceipt, error) {
	var receipt circulation.ReturnReceipt
	if err := c.t.do(ctx, http.MethodPut, "/emprestimos/"+loanID.String()+"/devolver", nil, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *CirculationClient) GetLoan(ctx context.Context, id uuid.UUID) (*LoanStatus, error) {
	var loan LoanStatus
	if err := c.t.do(ctx, http.MethodGet, "/emprestimos/"+id.String(), nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *CirculationClient) ListLoans(ctx context.Context, filter circulation.LoanFilter) ([]*LoanStatus, error) {
	q := url.Values{}
	if filter.UserID != uuid.Nil {
		q.Set("usuario_id", filter.UserID.String())
	}
	if filter.BookID != uuid.Nil {
		q.Set("livro_id", filter.BookID.String())
	}
	if filter.ActiveOnly {
		q.Set("ativos", "true")
	}

	path := "/emprestimos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var loans []*LoanStatus
	if err := c.t.do(ctx, http.MethodGet, path, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (c *CirculationClient) ListOverdue(ctx context.Context) ([]*LoanStatus, error) {
	var loans []*LoanStatus
	if err := c.t.do(ctx, http.MethodGet, "/emprestimos/atrasados", nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (c *CirculationClient) LoanHistory(ctx context.Context, id uuid.UUID) ([]eventstore.Event, error) {
	var events []eventstore.Event
	if err := c.t.do(ctx, http.MethodGet, "/emprestimos/"+id.String()+"/historico", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
