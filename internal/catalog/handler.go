// internal/catalog/handler.go
package catalog

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

// Routes serves the /livros resource.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreateBook)
	r.Get("/", h.handleListBooks)
	r.Get("/{id}", h.handleGetBook)
	r.Delete("/{id}", h.handleDeleteBook)
	return r
}

type createBookRequest struct {
	Titulo string `json:"titulo"`
	Autor  string `json:"autor"`
	ISBN   string `json:"isbn"`
}

func (h *Handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	book, err := h.service.CreateBook(r.Context(), req.Titulo, req.Autor, req.ISBN)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, book)
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		books, err := h.service.Search(r.Context(), q)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, books)
		return
	}

	onlyAvailable, err := httpx.QueryBool(r, "disponiveis")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	books, err := h.service.ListBooks(r.Context(), onlyAvailable)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, book)
}

func (h *Handler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
