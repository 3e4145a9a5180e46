// internal/circulation/handler.go
package circulation

import (
	"net/http"
	"time"

	"biblioteca/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// SetClock replaces time.Now when deriving the overdue state of responses.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// Routes serves the /emprestimos resource.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleLendBook)
	r.Get("/", h.handleListLoans)
	r.Get("/atrasados", h.handleListOverdue)
	r.Get("/{id}", h.handleGetLoan)
	r.Get("/{id}/historico", h.handleLoanHistory)
	r.Put("/{id}/devolver", h.handleReturnLoan)
	return r
}

// loanView adds the derived overdue state to a loan.
type loanView struct {
	*Loan
	Overdue     bool `json:"atrasado"`
	DaysOverdue int  `json:"dias_atraso"`
}

func (h *Handler) view(loan *Loan) loanView {
	now := h.now()
	return loanView{Loan: loan, Overdue: loan.IsOverdue(now), DaysOverdue: loan.DaysOverdue(now)}
}

func (h *Handler) views(loans []*Loan) []loanView {
	out := make([]loanView, 0, len(loans))
	for _, loan := range loans {
		out = append(out, h.view(loan))
	}
	return out
}

type lendRequest struct {
	LivroID   string `json:"livro_id"`
	UsuarioID string `json:"usuario_id"`
}

func (h *Handler) handleLendBook(w http.ResponseWriter, r *http.Request) {
	var req lendRequest
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

	loan, err := h.service.LendBook(r.Context(), bookID, userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, h.view(loan))
}

func (h *Handler) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	receipt, err := h.service.ReturnLoan(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleListLoans(w http.ResponseWriter, r *http.Request) {
	var (
		filter LoanFilter
		err    error
	)
	if filter.UserID, err = httpx.QueryUUID(r, "usuario_id"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if filter.BookID, err = httpx.QueryUUID(r, "livro_id"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if filter.ActiveOnly, err = httpx.QueryBool(r, "ativos"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.views(loans))
}

func (h *Handler) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListOverdue(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.views(loans))
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.view(loan))
}

func (h *Handler) handleLoanHistory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	events, err := h.service.LoanHistory(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, events)
}
