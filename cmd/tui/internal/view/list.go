package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/export"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateConfirmDelete
	listStateTimeframe
)

var statusFilters = []*bill.Status{
	nil,
	new(bill.StatusPending),
	new(bill.StatusOverdue),
	new(bill.StatusPaid),
}

type ListModel struct {
	CommonModel
	bills *bill.Service

	state listState
	table table.Model
	rows  []bill.Bill
	form  *huh.Form

	picker         TimeframePicker
	timeframeLabel string

	statusFilterIdx   int
	categoryFilterIdx int
	categories        []string

	filter  bill.Filter
	summary bill.Summary
	status  string

	fields  *billFields
	confirm *bool
}

func NewListModel(bills *bill.Service) ListModel {
	columns := []table.Column{
		{Title: "Vencimento", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Valor", Width: 14},
		{Title: "Descrição", Width: 36},
		{Title: "Categoria", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		bills:          bills,
		table:          t,
		picker:         NewTimeframePicker(),
		timeframeLabel: TimeframeAll.String(),
	}
}

func (m ListModel) Title() string { return "Contas" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | p: pay | e: edit | x: delete | s: status | c: category | d: due date | w: export | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LedgerChangedMsg:
		m.reload()
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not refresh overdue bills: %v", msg.err)
		} else if msg.changed > 0 {
			m.status = fmt.Sprintf("%d bill(s) became overdue.", msg.changed)
		}

		m.reload()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		m.reload()

		return m, nil

	case TimeframeSelectedMsg:
		m.filter.DateFrom, m.filter.DateTo = nil, nil
		if !msg.All {
			m.filter.DateFrom = &msg.Start
			m.filter.DateTo = &msg.End
		}

		m.timeframeLabel = msg.Label
		m.state = listStateBrowse
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit, listStateConfirmDelete:
		return m.updateForm(msg)
	case listStateTimeframe:
		return m.updateTimeframe(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.refreshCmd()
		case "p":
			if b, ok := m.current(); ok {
				return m, m.payCmd(b)
			}

			return m, nil
		case "w":
			return m, exportCmd(m.rows)
		case "e":
			return m.enterEditMode()
		case "x":
			return m.enterDeleteMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.filter.Status = statusFilters[m.statusFilterIdx]
			m.reload()

			return m, nil
		case "c":
			m.cycleCategory()
			m.reload()

			return m, nil
		case "d":
			m.picker.Reset()
			m.state = listStateTimeframe
			m.table.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = listStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m *ListModel) cycleCategory() {
	m.categories = m.bills.Categories(context.Background())
	m.categoryFilterIdx = (m.categoryFilterIdx + 1) % (len(m.categories) + 1)

	if m.categoryFilterIdx == 0 {
		m.filter.Category = nil
		return
	}

	m.filter.Category = &m.categories[m.categoryFilterIdx-1]
}

func (m ListModel) current() (bill.Bill, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return bill.Bill{}, false
	}

	return m.rows[idx], true
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	b, ok := m.current()
	if !ok {
		return m, nil
	}

	m.fields = fieldsFrom(b)
	m.form = newBillForm(m.fields, m.bills.Categories(context.Background()))
	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterDeleteMode() (tea.Model, tea.Cmd) {
	b, ok := m.current()
	if !ok {
		return m, nil
	}

	m.confirm = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Excluir %q?", b.Description)).
				Affirmative("Sim").
				Negative("Não").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = listStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	b, ok := m.current()
	if !ok {
		m.state = listStateBrowse
		return m, nil
	}

	if m.state == listStateConfirmDelete {
		if !*m.confirm {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd(b)
	}

	return m, m.saveCmd(b, m.fields)
}

// reload reads the current user's bills from the in-memory snapshot.
func (m *ListModel) reload() {
	ctx := context.Background()

	m.rows = m.bills.List(ctx, m.filter)
	m.summary = bill.Summarize(m.rows)

	rows := make([]table.Row, 0, len(m.rows))
	for _, b := range m.rows {
		rows = append(rows, table.Row{
			FormatDate(b.DueDate),
			string(b.Status),
			FormatAmount(b.Amount),
			b.Description,
			b.Category,
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m ListModel) View() string {
	if m.state == listStateTimeframe {
		return lipgloss.NewStyle().Padding(2).Render(m.picker.View())
	}

	statusLabel := "Todas"
	if s := statusFilters[m.statusFilterIdx]; s != nil {
		statusLabel = string(*s)
	}

	categoryLabel := "Todas"
	if m.filter.Category != nil {
		categoryLabel = *m.filter.Category
	}

	header := fmt.Sprintf(
		"Filtro: [s] Status: %s | [c] Categoria: %s | [d] Vencimento: %s",
		activeStyle(statusLabel),
		activeStyle(categoryLabel),
		activeStyle(m.timeframeLabel),
	)

	totals := fmt.Sprintf(
		"Total: %s   Pagas: %s   Pendentes: %s   Atrasadas: %s",
		FormatAmount(m.summary.Total),
		successStyle.Render(FormatAmount(m.summary.Paid)),
		FormatAmount(m.summary.Pending),
		errorStyle.Render(FormatAmount(m.summary.Overdue)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().PaddingBottom(1).Render(totals),
		tableView,
	)

	if m.form != nil && (m.state == listStateEdit || m.state == listStateConfirmDelete) {
		title := "Editar conta"
		if m.state == listStateConfirmDelete {
			title = "Excluir conta"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type refreshMsg struct {
	changed int
	err     error
}

func (m ListModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		changed, err := m.bills.RefreshOverdue(ctx)

		return refreshMsg{changed: changed, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) payCmd(b bill.Bill) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if _, err := m.bills.Pay(ctx, b.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("%q marked as paid.", b.Description)}
	}
}

func (m ListModel) deleteCmd(b bill.Bill) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.bills.Delete(ctx, b.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("%q deleted.", b.Description)}
	}
}

func (m ListModel) saveCmd(b bill.Bill, fields *billFields) tea.Cmd {
	return func() tea.Msg {
		params, err := fields.updateParams(b)
		if err != nil {
			return listSaveMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		if _, err := m.bills.Update(ctx, b.ID, params); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("%q updated.", b.Description)}
	}
}

// exportCmd writes the visible bills to contas_YYYYMMDD.csv in the working directory.
func exportCmd(rows []bill.Bill) tea.Cmd {
	return func() tea.Msg {
		name := fmt.Sprintf("contas_%s.csv", time.Now().Format("20060102"))

		f, err := os.Create(name)
		if err != nil {
			return listSaveMsg{err: err}
		}
		defer f.Close()

		if err := export.WriteCSV(f, rows); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("%d bill(s) written to %s.", len(rows), name)}
	}
}
