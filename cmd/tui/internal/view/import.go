package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/importer"
	"github.com/MrJamesThe3rd/contas/internal/matching"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateImporting
	importStatePreview
	importStateResult
)

type formatOption struct {
	label  string
	format importer.Format
}

var formatOptions = []formatOption{
	{label: "Detectar pelo cabeçalho", format: ""},
	{label: "Planilha", format: importer.FormatPlanilha},
	{label: "Exportação", format: importer.FormatExport},
}

type ImportModel struct {
	CommonModel
	bills         *bill.Service
	importService *importer.Service
	matching      *matching.Service

	state        importState
	filePicker   filepicker.Model
	formatCursor int

	params    []bill.CreateParams
	suggested int
	preview   list.Model
	selected  map[int]bool

	status string
	err    error
}

func NewImportModel(bills *bill.Service, impSvc *importer.Service, matchSvc *matching.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		bills:         bills,
		importService: impSvc,
		matching:      matchSvc,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Importar CSV" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStatePreview:
			return m.updatePreview(msg)
		}

	case parsedMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.params = msg.params
		m.suggested = msg.suggested
		m.selected = make(map[int]bool, len(msg.params))

		items := make([]list.Item, len(msg.params))
		for i, p := range msg.params {
			items[i] = previewItem{params: p, index: i}
			m.selected[i] = true
		}

		m.preview = list.New(items, previewDelegate{selected: m.selected}, 80, 20)
		m.preview.Title = fmt.Sprintf("%d contas encontradas (%d categorias sugeridas)", len(msg.params), msg.suggested)
		m.preview.SetShowStatusBar(false)
		m.preview.SetFilteringEnabled(false)
		m.preview.SetShowHelp(false)
		m.state = importStatePreview

		return m, nil

	case importDoneMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d bills.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(formatOptions[m.formatCursor].format, path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateResult, importStatePreview:
		m.state = importStateFormatSelect
		m.err = nil
		m.status = ""
		m.params = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.preview.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.params {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.params {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s",
				formatOptions[m.formatCursor].label, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.preview.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	s := "Formato do arquivo:\n\n"

	for i, opt := range formatOptions {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, opt.label)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type parsedMsg struct {
	params    []bill.CreateParams
	suggested int
	err       error
}

type importDoneMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(format importer.Format, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parsedMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(format, f)
		if err != nil {
			return parsedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		userID, err := m.bills.UserID(ctx)
		if err != nil {
			return parsedMsg{err: err}
		}

		suggested, err := m.matching.Fill(ctx, userID, params)
		if err != nil {
			return parsedMsg{err: err}
		}

		return parsedMsg{params: params, suggested: suggested}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	params := m.params
	selected := m.selected

	return func() tea.Msg {
		chosen := make([]bill.CreateParams, 0, len(params))
		for i, p := range params {
			if selected[i] {
				chosen = append(chosen, p)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		bills, err := m.bills.CreateBatch(ctx, chosen)
		if err != nil {
			return importDoneMsg{err: err}
		}

		return importDoneMsg{count: len(bills)}
	}
}

type previewItem struct {
	params bill.CreateParams
	index  int
}

func (i previewItem) Title() string       { return i.params.Description }
func (i previewItem) Description() string { return i.params.Category }
func (i previewItem) FilterValue() string { return i.params.Description }

type previewDelegate struct {
	selected map[int]bool
}

func (d previewDelegate) Height() int                             { return 2 }
func (d previewDelegate) Spacing() int                            { return 0 }
func (d previewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d previewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(previewItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	p := item.params

	line1 := fmt.Sprintf("%s%s %s  %s  %s", cursor, checkbox, FormatDate(p.DueDate), FormatAmount(p.Amount), p.Description)
	line2 := faintStyle.Render(fmt.Sprintf("      %s", p.Category))

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
