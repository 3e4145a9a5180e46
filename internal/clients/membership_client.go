// internal/clients/membership_client.go
package clients

import (
	"context"
	"net/http"

	"biblioteca/internal/membership"

	"github.com/google/uuid"
)

type MembershipClient struct {
	t *transport
}

func NewMembershipClient(baseURL string, opts ...Option) *MembershipClient {
	return &MembershipClient{t: newTransport(baseURL, opts...)}
}

func (c *MembershipClient) RegisterUser(ctx context.Context, name, email string) (*membership.User, error) {
	req := struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
	}{name, email}

	var user membership.User
	if err := c.t.do(ctx, http.MethodPost, "/usuarios", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *MembershipClient) GetUser(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	var user membership.User
	if err := c.t.do(ctx, http.MethodGet, "/usuarios/"+id.String(), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *MembershipClient) ListUsers(ctx context.Context) ([]*membership.User, error) {
	var users []*membership.User
	if err := c.t.do(ctx, http.MethodGet, "/usuarios", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *MembershipClient) ActivateUser(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	return c.changeStatus(ctx, id, "ativar")
}

func (c *MembershipClient) DeactivateUser(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	return c.changeStatus(ctx, id, "desativar")
}

func (c *MembershipClient) changeStatus(ctx context.Context, id uuid.UUID, action string) (*membership.User, error) {
	var user membership.User
	if err := c.t.do(ctx, http.MethodPut, "/usuarios/"+id.String()+"/"+action, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *MembershipClient) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.t.do(ctx, http.MethodDelete, "/usuarios/"+id.String(), nil, nil)
}
