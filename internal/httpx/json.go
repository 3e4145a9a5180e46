// internal/httpx/json.go
package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"biblioteca/internal/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Erro string `json:"erro"`
}

// WriteError maps err onto a status code. Unexpected errors are logged and
// reported with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	msg, ok := apperr.Message(err)
	if !ok || status == http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		msg = "erro interno do servidor"
	}

	WriteJSON(w, status, ErrorResponse{Erro: msg})
}

// StatusFor returns the HTTP status matching the kind of err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrBusinessRule),
		errors.Is(err, apperr.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}

// ParseUUID parses a required id taken from a request body.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperr.Validation("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", field)
	}
	return id, nil
}

// URLParamUUID parses the named chi route parameter as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// QueryUUID parses an optional query parameter. A missing parameter yields uuid.Nil.
func QueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation("invalid %s", name)
	}
	return v, nil
}
