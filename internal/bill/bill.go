package bill

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of a bill.
type Status string

const (
	StatusPending Status = "pendente"
	StatusPaid    Status = "paga"
	StatusOverdue Status = "atrasada"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}

	return false
}

var (
	ErrNotFound           = errors.New("bill not found")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrClosed             = errors.New("ledger closed")
)

// Bill is a payable obligation owned by a single user.
type Bill struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Description string     `json:"descricao"`
	Amount      float64    `json:"valor"`
	DueDate     time.Time  `json:"dataVencimento"`
	PaidDate    *time.Time `json:"dataPagamento,omitempty"`
	Status      Status     `json:"status"`
	Category    string     `json:"categoria"`
	Notes       string     `json:"observacoes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// clone returns a deep copy so callers never share the PaidDate pointer with the ledger.
func (b Bill) clone() Bill {
	if b.PaidDate != nil {
		paid := *b.PaidDate
		b.PaidDate = &paid
	}

	return b
}

// IsOverdueAt reports whether a pending bill is past due at now.
func (b Bill) IsOverdueAt(now time.Time) bool {
	return b.Status == StatusPending && b.DueDate.Before(now)
}

type CreateParams struct {
	Description string    `validate:"required"`
	Amount      float64   `validate:"gt=0"`
	DueDate     time.Time `validate:"required"`
	Category    string    `validate:"required"`
	Notes       string
}

// UpdateParams holds a partial update; nil fields are left untouched.
type UpdateParams struct {
	Description *string
	Amount      *float64
	DueDate     *time.Time
	PaidDate    *time.Time
	Status      *Status
	Category    *string
	Notes       *string
}

// Filter narrows a user's bills. Absent fields impose no constraint.
type Filter struct {
	Status   *Status
	Category *string
	DateFrom *time.Time
	DateTo   *time.Time
}
