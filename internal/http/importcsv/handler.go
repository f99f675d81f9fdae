package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	billHandler "github.com/MrJamesThe3rd/contas/internal/http/bill"
	"github.com/MrJamesThe3rd/contas/internal/http/response"
	"github.com/MrJamesThe3rd/contas/internal/importer"
	"github.com/MrJamesThe3rd/contas/internal/matching"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	billSvc   *bill.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, billSvc *bill.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		billSvc:   billSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported  int                        `json:"imported"`
	Suggested int                        `json:"suggested"`
	Bills     []billHandler.BillResponse `json:"bills"`
}

// importCSV creates every bill in the uploaded file in one ledger write.
// Rows without a category get one suggested from the user's own bills.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := h.billSvc.UserID(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	suggested, err := h.matchSvc.Fill(r.Context(), userID, params)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	created, err := h.billSvc.CreateBatch(r.Context(), params)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, importResponse{
		Imported:  len(created),
		Suggested: suggested,
		Bills:     billHandler.ToResponseList(created),
	})
}
