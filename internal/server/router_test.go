// internal/server/router_test.go
package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"biblioteca/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

type stubResource string

func (s stubResource) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(s)) })
	r.Post("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	return r
}

func testResources() Resources {
	return Resources{
		Books:     stubResource("livros"),
		Users:     stubResource("usuarios"),
		Loans:     stubResource("emprestimos"),
		Donations: stubResource("doacoes"),
	}
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterMountsResources(t *testing.T) {
	r := NewRouter(Options{Logger: logging.Discard()}, testResources())

	for _, name := range []string{"livros", "usuarios", "emprestimos", "doacoes"} {
		rec := serve(r, http.MethodGet, "/"+name)
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, name, rec.Body.String())
	}

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/nada").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPatch, "/livros").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/livros/panic").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/metrics").Code)
}

func TestRouterHealth(t *testing.T) {
	r := NewRouter(Options{Logger: logging.Discard()}, testResources())
	rec := serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","mensagem":"API da Biblioteca funcionando corretamente"}`, rec.Body.String())

	r = NewRouter(Options{
		Logger: logging.Discard(),
		Health: func(context.Context) error { return errors.New("connection refused") },
	}, testResources())
	rec = serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterRateLimitsResourcesOnly(t *testing.T) {
	r := NewRouter(Options{
		Logger:  logging.Discard(),
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	}, testResources())

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/livros").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/usuarios").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/usuarios").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics").Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, logging.Discard()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
