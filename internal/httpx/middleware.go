// internal/httpx/middleware.go
package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// statusRecorder captures what a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// RequestLogger logs each response at a level chosen by its status class:
// ERROR for 5xx, WARN for 4xx, INFO otherwise.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case rec.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "response", slog.Group("http",
				"method", r.Method,
				"uri", r.RequestURI,
				"status", rec.status,
				"bytes_sent", rec.bytes,
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			))
		})
	}
}

// Recoverer turns a handler panic into a 500 response.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.ErrorContext(r.Context(), "request panic",
						slog.Group("http", "method", r.Method, "uri", r.RequestURI),
						slog.Group("error", "panic", p, "stack", string(debug.Stack())),
					)
					WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Erro: "erro interno do servidor"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit throttles state-changing requests. Reads are never limited.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if !limiter.Allow() {
					w.Header().Set("Retry-After", "1")
					WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{Erro: "muitas requisições, tente novamente"})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestObserver receives one observation per served request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, start time.Time)
}

// Instrument reports every request to obs, labelled with the matched route
// pattern. Unmatched requests get an empty route.
func Instrument(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			obs.ObserveRequest(r.Method, route, rec.status, start)
		})
	}
}
