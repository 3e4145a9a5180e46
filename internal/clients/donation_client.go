// internal/clients/donation_client.go
package clients

import (
	"context"
	"net/http"

	"biblioteca/internal/donation"

	"github.com/google/uuid"
)

type DonationClient struct {
	t *transport
}

func NewDonationClient(baseURL string, opts ...Option) *DonationClient {
	return &DonationClient{t: newTransport(baseURL, opts...)}
}

func (c *DonationClient) DonateBook(ctx context.Context, bookID, userID uuid.UUID) (*donation.DonationReceipt, error) {
	req := struct {
		LivroID   string `json:"livro_id"`
		UsuarioID string `json:"usuario_id"`
	}{bookID.String(), userID.String()}

	var receipt donation.DonationReceipt
	if err := c.t.do(ctx, http.MethodPost, "/doacoes", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *DonationClient) DonateHours(ctx context.Context, userID uuid.UUID, hours float64, activity string) (*donation.HoursReceipt, error) {
	req := struct {
		UsuarioID string  `json:"usuario_id"`
		Horas     float64 `json:"horas"`
		Tipo      string  `json:"tipo"`
	}{userID.String(), hours, activity}

	var receipt donation.HoursReceipt
	if err := c.t.do(ctx, http.MethodPost, "/doacoes/horas", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *DonationClient) ListDonations(ctx context.Context, userID uuid.UUID) ([]*donation.Donation, error) {
	var out []*donation.Donation
	if err := c.t.do(ctx, http.MethodGet, "/doacoes"+userQuery(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DonationClient) ListHours(ctx context.Context, userID uuid.UUID) ([]*donation.Hours, error) {
	var out []*donation.Hours
	if err := c.t.do(ctx, http.MethodGet, "/doacoes/horas"+userQuery(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func userQuery(userID uuid.UUID) string {
	if userID == uuid.Nil {
		return ""
	}
	return "?usuario_id=" + userID.String()
}
