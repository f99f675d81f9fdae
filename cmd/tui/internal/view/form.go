package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

// billFields backs the inputs of the add and edit forms.
type billFields struct {
	Description string
	Amount      string
	DueDate     string
	Category    string
	Notes       string
}

func fieldsFrom(b bill.Bill) *billFields {
	return &billFields{
		Description: b.Description,
		Amount:      strings.TrimPrefix(FormatAmount(b.Amount), "R$ "),
		DueDate:     FormatDate(b.DueDate),
		Category:    b.Category,
		Notes:       b.Notes,
	}
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validAmount(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}

	if v <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	return nil
}

func validDate(s string) error {
	_, err := ParseDate(s)
	return err
}

// newBillForm builds the shared bill form. categories feed the suggestions
// of the category input.
func newBillForm(f *billFields, categories []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Descrição").
				Value(&f.Description).
				Validate(notEmpty("description")),

			huh.NewInput().
				Key("amount").
				Title("Valor").
				Placeholder("1.234,56").
				Value(&f.Amount).
				Validate(validAmount),

			huh.NewInput().
				Key("due_date").
				Title("Vencimento").
				Placeholder("DD/MM/AAAA").
				Value(&f.DueDate).
				Validate(validDate),

			huh.NewInput().
				Key("category").
				Title("Categoria").
				Suggestions(categories).
				Value(&f.Category).
				Validate(notEmpty("category")),

			huh.NewText().
				Key("notes").
				Title("Observações").
				Lines(3).
				Value(&f.Notes),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (f *billFields) createParams() (bill.CreateParams, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return bill.CreateParams{}, err
	}

	due, err := ParseDate(f.DueDate)
	if err != nil {
		return bill.CreateParams{}, err
	}

	return bill.CreateParams{
		Description: strings.TrimSpace(f.Description),
		Amount:      amount,
		DueDate:     due,
		Category:    strings.TrimSpace(f.Category),
		Notes:       strings.TrimSpace(f.Notes),
	}, nil
}

// updateParams reports only the fields that differ from b.
func (f *billFields) updateParams(b bill.Bill) (bill.UpdateParams, error) {
	p, err := f.createParams()
	if err != nil {
		return bill.UpdateParams{}, err
	}

	var u bill.UpdateParams

	if p.Description != b.Description {
		u.Description = &p.Description
	}

	if p.Amount != b.Amount {
		u.Amount = &p.Amount
	}

	if !sameDay(p.DueDate, b.DueDate) {
		u.DueDate = &p.DueDate
	}

	if p.Category != b.Category {
		u.Category = &p.Category
	}

	if p.Notes != b.Notes {
		u.Notes = &p.Notes
	}

	return u, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
