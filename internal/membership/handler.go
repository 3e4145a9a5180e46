// internal/membership/handler.go
package membership

import (
	"context"
	"net/http"

	"biblioteca/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes serves the /usuarios resource.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleRegisterUser)
	r.Get("/", h.handleListUsers)
	r.Get("/{id}", h.handleGetUser)
	r.Delete("/{id}", h.handleDeleteUser)
	r.Put("/{id}/ativar", h.handleStatus(h.service.ActivateUser))
	r.Put("/{id}/desativar", h.handleStatus(h.service.DeactivateUser))
	return r
}

type registerUserRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Nome, req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleStatus(change func(ctx context.Context, id uuid.UUID) (*User, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.URLParamUUID(r, "id")
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		user, err := change(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, user)
	}
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
