package view

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contas/internal/bill"
)

type AddModel struct {
	CommonModel
	bills *bill.Service

	fields *billFields
	form   *huh.Form
	saving bool
	status string
	err    error
}

func NewAddModel(bills *bill.Service) AddModel {
	fields := &billFields{}

	return AddModel{
		bills:  bills,
		fields: fields,
		form:   newBillForm(fields, bills.Categories(context.Background())),
	}
}

func (m AddModel) Title() string { return "Nova conta" }

func (m AddModel) ShortHelp() string {
	if m.status != "" {
		return "Enter: add another | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addResultMsg:
		m.saving = false
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		if msg.err == nil {
			m.status = fmt.Sprintf("%q saved, due %s.", msg.bill.Description, FormatDate(msg.bill.DueDate))
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.status != "" && msg.Type == tea.KeyEnter {
			next := NewAddModel(m.bills)
			return next, next.Init()
		}
	}

	if m.saving || m.status != "" {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.createCmd()
}

func (m AddModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	switch {
	case m.saving:
		return style.Render("Saving...")
	case m.err != nil:
		return style.Render(errorStyle.Render(m.status) + "\n\n(Enter to try again, Esc to go back)")
	case m.status != "":
		return style.Render(successStyle.Render(m.status) + "\n\n(Enter to add another, Esc to go back)")
	}

	return style.Render("Nova conta\n\n" + m.form.View())
}

type addResultMsg struct {
	bill *bill.Bill
	err  error
}

func (m AddModel) createCmd() tea.Cmd {
	fields := m.fields

	return func() tea.Msg {
		params, err := fields.createParams()
		if err != nil {
			return addResultMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		b, err := m.bills.Create(ctx, params)

		return addResultMsg{bill: b, err: err}
	}
}
