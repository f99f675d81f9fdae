package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/contas/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/contas/internal/auth"
	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/config"
	"github.com/MrJamesThe3rd/contas/internal/importer"
	"github.com/MrJamesThe3rd/contas/internal/kv"
	"github.com/MrJamesThe3rd/contas/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/contas/internal/matching/store"
	"github.com/MrJamesThe3rd/contas/pkg/logging"
)

const localUser = "local"

type model struct {
	billService     *bill.Service
	importService   *importer.Service
	matchingService *matching.Service

	currentView View

	listView   view.ListModel
	addView    view.AddModel
	importView view.ImportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewList   View = 1
	ViewAdd    View = 2
	ViewImport View = 3
)

func newModel(billSvc *bill.Service, impSvc *importer.Service, matchSvc *matching.Service) model {
	return model{
		billService:     billSvc,
		importService:   impSvc,
		matchingService: matchSvc,
		currentView:     ViewMenu,
		listView:        view.NewListModel(billSvc),
		addView:         view.NewAddModel(billSvc),
		importView:      view.NewImportModel(billSvc, impSvc, matchSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.billService)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.billService)

				return m, m.addView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.billService, m.importService, m.matchingService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.LedgerChangedMsg:
		newModel, cmd := m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)

		return m, cmd
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		summary := m.billService.Summary(context.Background(), bill.Filter{})

		return lipgloss.NewStyle().Padding(2).Render(
			"Contas\n\n" +
				fmt.Sprintf("Pendentes: %s   Atrasadas: %s\n\n",
					view.FormatAmount(summary.Pending), view.FormatAmount(summary.Overdue)) +
				"1. Listar contas\n" +
				"2. Nova conta\n" +
				"3. Importar CSV\n\n" +
				"q. Sair",
		)
	case ViewList:
		current = m.listView
	case ViewAdd:
		current = m.addView
	case ViewImport:
		current = m.importView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

// logOutput keeps log lines off the terminal the UI is drawing on.
func logOutput(path string) (io.Writer, func()) {
	if path == "" {
		return io.Discard, func() {}
	}

	f, err := tea.LogToFile(path, "contas")
	if err != nil {
		return io.Discard, func() {}
	}

	return f, func() { _ = f.Close() }
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	out, closeLog := logOutput(cfg.TUI.LogFile)
	logging.Setup(out, cfg.Log.Level)

	if err := run(cfg); err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "contas: %v\n", err)
		os.Exit(1)
	}

	closeLog()
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	store, err := kv.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}
	defer store.Close()

	ledger := bill.NewLedger(store,
		bill.WithKey(cfg.Storage.LedgerKey),
		bill.WithLogger(slog.Default().With("component", "ledger")),
	)
	defer ledger.Close()

	if err := ledger.Load(ctx); err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	userID := cfg.TUI.UserID
	if userID == "" {
		userID = localUser
	}

	billSvc := bill.NewService(ledger, auth.StaticIdentity(userID))
	matchSvc := matching.NewService(matchingStore.New(ledger))

	p := tea.NewProgram(newModel(billSvc, importer.NewService(), matchSvc), tea.WithAltScreen())

	// Send blocks until the program loop reads it, and listeners may run on
	// the loop's own goroutine.
	unsubscribe := ledger.Subscribe(func(*bill.Snapshot) {
		go p.Send(view.LedgerChangedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
