package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contas/internal/export"
	billHandler "github.com/MrJamesThe3rd/contas/internal/http/bill"
	"github.com/MrJamesThe3rd/contas/internal/http/response"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.csv)
	r.Get("/archive", h.archive)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	filter, err := billHandler.ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bills, err := h.svc.Bills(r.Context(), filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"contas_%s.csv\"", h.now().Format("20060102")))

	if err := export.WriteCSV(w, bills); err != nil {
		slog.Error("failed to write csv export", "error", err)
	}
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	filter, err := billHandler.ParseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bills, err := h.svc.Bills(r.Context(), filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"contas_%s.zip\"", h.now().Format("20060102")))

	if err := export.WriteArchive(w, bills); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
