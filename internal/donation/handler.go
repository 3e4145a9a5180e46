// internal/donation/handler.go
package donation

import (
	"net/http"

	"biblioteca/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes serves the /doacoes resource.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleDonateBook)
	r.Get("/", h.handleListDonations)
	r.Post("/horas", h.handleDonateHours)
	r.Get("/horas", h.handleListHours)
	return r
}

type donateBookRequest struct {
	LivroID   string `json:"livro_id"`
	UsuarioID string `json:"usuario_id"`
}

type donateHoursRequest struct {
	UsuarioID string  `json:"usuario_id"`
	Horas     float64 `json:"horas"`
	Tipo      string  `json:"tipo"`
}

func (h *Handler) handleDonateBook(w http.ResponseWriter, r *http.Request) {
	var req donateBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	bookID, err := httpx.ParseUUID(req.LivroID, "livro_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	userID, err := httpx.ParseUUID(req.UsuarioID, "usuario_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	receipt, err := h.service.DonateBook(r.Context(), bookID, userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleDonateHours(w http.ResponseWriter, r *http.Request) {
	var req donateHoursRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	userID, err := httpx.ParseUUID(req.UsuarioID, "usuario_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	receipt, err := h.service.DonateHours(r.Context(), userID, req.Horas, req.Tipo)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleListDonations(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.QueryUUID(r, "usuario_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	donations, err := h.service.ListDonations(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, donations)
}

func (h *Handler) handleListHours(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.QueryUUID(r, "usuario_id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	hours, err := h.service.ListHours(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, hours)
}
