// internal/httpx/json_test.go
package httpx

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"biblioteca/internal/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.NotFound("book not found"), http.StatusNotFound},
		{apperr.Validation("invalid isbn"), http.StatusBadRequest},
		{apperr.BusinessRule("book not available"), http.StatusBadRequest},
		{apperr.InvalidState("already active"), http.StatusBadRequest},
		{fmt.Errorf("failed to get book: %w", apperr.NotFound("book not found")), http.StatusNotFound},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/livros", nil)

	rec := httptest.NewRecorder()
	WriteError(rec, req, apperr.BusinessRule("book not available"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"erro":"book not available"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, req, errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"erro":"erro interno do servidor"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Titulo string `json:"titulo"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"titulo":"Dom Casmurro"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "Dom Casmurro", dst.Titulo)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperr.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"titulo":`))
	assert.ErrorIs(t, DecodeJSON(req, &dst), apperr.ErrValidation)
}

func TestParams(t *testing.T) {
	id := uuid.New()

	r := chi.NewRouter()
	r.Get("/x/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, err := URLParamUUID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		user, err := QueryUUID(r, "usuario_id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		active, err := QueryBool(r, "ativos")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"id": got, "usuario_id": user, "ativos": active})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x/"+id.String()+"?ativos=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body["id"])
	assert.Equal(t, uuid.Nil.String(), body["usuario_id"])
	assert.Equal(t, true, body["ativos"])

	for _, path := range []string{"/x/nope", "/x/" + id.String() + "?usuario_id=1", "/x/" + id.String() + "?ativos=talvez"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	got, err := ParseUUID(id.String(), "livro_id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUID("", "livro_id")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.EqualError(t, err, "livro_id is required")

	_, err = ParseUUID("nope", "usuario_id")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.EqualError(t, err, "invalid usuario_id")
}
