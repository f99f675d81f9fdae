package bill

import (
	"github.com/shopspring/decimal"
)

// Summary is the financial aggregate of a set of bills.
// Total always equals Paid + Pending + Overdue.
type Summary struct {
	Total   float64 `json:"total"`
	Paid    float64 `json:"pagas"`
	Pending float64 `json:"pendentes"`
	Overdue float64 `json:"atrasadas"`
}

// Summarize adds every bill to the total and to the bucket of its status.
// Accumulation is done in decimal so the buckets add up to the total exactly.
func Summarize(bills []Bill) Summary {
	var paid, pending, overdue decimal.Decimal

	for _, b := range bills {
		amount := decimal.NewFromFloat(b.Amount)

		switch b.Status {
		case StatusPaid:
			paid = paid.Add(amount)
		case StatusPending:
			pending = pending.Add(amount)
		case StatusOverdue:
			overdue = overdue.Add(amount)
		}
	}

	total := paid.Add(pending).Add(overdue)

	return Summary{
		Total:   total.InexactFloat64(),
		Paid:    paid.InexactFloat64(),
		Pending: pending.InexactFloat64(),
		Overdue: overdue.InexactFloat64(),
	}
}
