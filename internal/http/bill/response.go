package bill

import (
	"time"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

// BillResponse is a bill as returned by the API. The owner is implied by the token.
type BillResponse struct {
	ID          string      `json:"id"`
	Description string      `json:"descricao"`
	Amount      float64     `json:"valor"`
	DueDate     time.Time   `json:"dataVencimento"`
	PaidDate    *time.Time  `json:"dataPagamento,omitempty"`
	Status      bill.Status `json:"status"`
	Category    string      `json:"categoria"`
	Notes       string      `json:"observacoes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type summaryResponse struct {
	Total   float64 `json:"total"`
	Paid    float64 `json:"pagas"`
	Pending float64 `json:"pendentes"`
	Overdue float64 `json:"atrasadas"`
}

type refreshResponse struct {
	Updated int `json:"updated"`
}

func toResponse(b *bill.Bill) BillResponse {
	return BillResponse{
		ID:          b.ID,
		Description: b.Description,
		Amount:      b.Amount,
		DueDate:     b.DueDate,
		PaidDate:    b.PaidDate,
		Status:      b.Status,
		Category:    b.Category,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToResponseList is shared with the import handler so both return bills in
// the same shape.
func ToResponseList(bills []bill.Bill) []BillResponse {
	resp := make([]BillResponse, len(bills))
	for i := range bills {
		resp[i] = toResponse(&bills[i])
	}

	return resp
}

func toSummaryResponse(s bill.Summary) summaryResponse {
	return summaryResponse{
		Total:   s.Total,
		Paid:    s.Paid,
		Pending: s.Pending,
		Overdue: s.Overdue,
	}
}
