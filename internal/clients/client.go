// internal/clients/client.go
package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Option func(*transport)

// WithHTTPClient replaces the default client, which times out after 10 seconds.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) {
		t.http = c
	}
}

type transport struct {
	baseURL string
	http    *http.Client
}

func newTransport(baseURL string, opts ...Option) *transport {
	t := &transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// do sends body as JSON and decodes the response into out when out is not nil.
func (t *transport) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Erro string `json:"erro"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Erro}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client bundles the per-resource clients of one API server.
type Client struct {
	Catalog     *CatalogClient
	Membership  *MembershipClient
	Circulation *CirculationClient
	Donation    *DonationClient
}

func New(baseURL string, opts ...Option) *Client {
	t := newTransport(baseURL, opts...)
	return &Client{
		Catalog:     &CatalogClient{t: t},
		Membership:  &MembershipClient{t: t},
		Circulation: &CirculationClient{t: t},
		Donation:    &DonationClient{t: t},
	}
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	return c.Catalog.t.do(ctx, http.MethodGet, "/health", nil, nil)
}
