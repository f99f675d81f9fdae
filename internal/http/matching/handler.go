package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/http/response"
	"github.com/MrJamesThe3rd/contas/internal/matching"
)

type Handler struct {
	svc   *matching.Service
	bills *bill.Service
}

func NewHandler(svc *matching.Service, bills *bill.Service) *Handler {
	return &Handler{svc: svc, bills: bills}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
}

type suggestResponse struct {
	Description string `json:"descricao"`
	Category    string `json:"categoria"`
	Matched     bool   `json:"encontrada"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		http.Error(w, "description query parameter is required", http.StatusBadRequest)
		return
	}

	userID, err := h.bills.UserID(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	category, err := h.svc.Suggest(r.Context(), userID, desc)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	resp := suggestResponse{Description: desc, Category: category, Matched: category != ""}
	if !resp.Matched {
		resp.Category = matching.DefaultCategory
	}

	response.JSON(w, http.StatusOK, resp)
}
