package bill

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/http/response"
)

type Handler struct {
	svc *bill.Service
}

func NewHandler(svc *bill.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Get("/summary", h.summary)
	r.Post("/refresh-overdue", h.refreshOverdue)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/pay", h.pay)
	r.Delete("/{id}", h.delete)
}

type createBillRequest struct {
	Description string  `json:"descricao"`
	Amount      float64 `json:"valor"`
	DueDate     date    `json:"dataVencimento"`
	Category    string  `json:"categoria"`
	Notes       string  `json:"observacoes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), bill.CreateParams{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate.Time,
		Category:    req.Category,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, toResponse(b))
}

// ParseFilter reads status, category, date_from and date_to from the query string.
func ParseFilter(r *http.Request) (bill.Filter, error) {
	var (
		filter bill.Filter
		q      = r.URL.Query()
	)

	if s := q.Get("status"); s != "" {
		status := bill.Status(s)
		if !status.Valid() {
			return filter, fmt.Errorf("invalid status %q", s)
		}

		filter.Status = &status
	}

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("date_from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return filter, err
		}

		filter.DateFrom = &t
	}

	if s := q.Get("date_to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return filter, err
		}

		filter.DateTo = &t
	}

	return filter, nil
}

// refresh applies the overdue rule before a read so listings never show a
// stale pending status. A failure only costs freshness.
func (h *Handler) refresh(r *http.Request) {
	if _, err := h.svc.RefreshOverdue(r.Context()); err != nil {
		slog.Warn("failed to refresh overdue bills", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.refresh(r)

	response.JSON(w, http.StatusOK, ToResponseList(h.svc.List(r.Context(), filter)))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.refresh(r)

	response.JSON(w, http.StatusOK, toSummaryResponse(h.svc.Summary(r.Context(), filter)))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.svc.Categories(r.Context()))
}

func (h *Handler) refreshOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RefreshOverdue(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, refreshResponse{Updated: n})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toResponse(b))
}

type updateBillRequest struct {
	Description *string      `json:"descricao,omitempty"`
	Amount      *float64     `json:"valor,omitempty"`
	DueDate     *date        `json:"dataVencimento,omitempty"`
	PaidDate    *date        `json:"dataPagamento,omitempty"`
	Status      *bill.Status `json:"status,omitempty"`
	Category    *string      `json:"categoria,omitempty"`
	Notes       *string      `json:"observacoes,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), bill.UpdateParams{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate.ptr(),
		PaidDate:    req.PaidDate.ptr(),
		Status:      req.Status,
		Category:    req.Category,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Pay(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
