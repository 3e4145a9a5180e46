// internal/server/router.go
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"biblioteca/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Resource is a bounded context that serves its own subtree.
type Resource interface {
	Routes() chi.Router
}

// Resources are mounted under their Portuguese collection names.
type Resources struct {
	Books     Resource
	Users     Resource
	Loans     Resource
	Donations Resource
}

type Options struct {
	Logger *slog.Logger
	// Limiter throttles write requests when set.
	Limiter *rate.Limiter
	// Observer sees every request when set.
	Observer httpx.RequestObserver
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	// Health is called by /health; a nil func always reports healthy.
	Health func(ctx context.Context) error
}

func NewRouter(opts Options, res Resources) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(opts.Logger))
	r.Use(httpx.Recoverer(opts.Logger))
	if opts.Observer != nil {
		r.Use(httpx.Instrument(opts.Observer))
	}

	r.Get("/health", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(httpx.RateLimit(opts.Limiter))
		}
		r.Mount("/livros", res.Books.Routes())
		r.Mount("/usuarios", res.Users.Routes())
		r.Mount("/emprestimos", res.Loans.Routes())
		r.Mount("/doacoes", res.Donations.Routes())
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Erro: "rota não encontrada"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, httpx.ErrorResponse{Erro: "método não permitido"})
	})

	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Mensagem string `json:"mensagem"`
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := check(ctx); err != nil {
				slog.Default().WarnContext(r.Context(), "health check failed", "error", err)
				httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
					Status:   "INDISPONIVEL",
					Mensagem: "banco de dados indisponível",
				})
				return
			}
		}

		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:   "OK",
			Mensagem: "API da Biblioteca funcionando corretamente",
		})
	}
}
