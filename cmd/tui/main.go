package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/smartledger/smartledger/cmd/tui/internal/view"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/budget"
	budgetStore "github.com/smartledger/smartledger/internal/budget/store"
	"github.com/smartledger/smartledger/internal/config"
	"github.com/smartledger/smartledger/internal/dashboard"
	"github.com/smartledger/smartledger/internal/database"
	"github.com/smartledger/smartledger/internal/export"
	"github.com/smartledger/smartledger/internal/importer"
	"github.com/smartledger/smartledger/internal/matching"
	matchingStore "github.com/smartledger/smartledger/internal/matching/store"
	"github.com/smartledger/smartledger/internal/transaction"
	txStore "github.com/smartledger/smartledger/internal/transaction/store"
	"github.com/smartledger/smartledger/internal/user"
	userStore "github.com/smartledger/smartledger/internal/user/store"
)

type services struct {
	users        *user.Service
	transactions *transaction.Service
	budgets      *budget.Service
	matching     *matching.Service
	imports      *importer.Service
	exports      *export.Service
	dashboard    *dashboard.Service
}

type model struct {
	svc services

	user        *user.User
	currentView View
	active      tea.Model
	loginView   view.LoginModel
}

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewScreen
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	txSvc := transaction.NewService(txStore.New(db))

	svc := services{
		users:        user.NewService(userStore.New(db), auth.NewJWT(cfg.Auth.Secret, cfg.Auth.TokenTTL)),
		transactions: txSvc,
		budgets:      budget.NewService(budgetStore.New(db)),
		matching:     matching.NewService(matchingStore.New(db)),
		imports:      importer.NewService(txSvc),
		exports:      export.NewService(txSvc),
		dashboard:    dashboard.NewService(txSvc, nil),
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.user = msg.User
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewScreen:
		m.active, cmd = m.active.Update(msg)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	owner := m.user.ID

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.active = view.NewDashboardModel(owner, m.svc.dashboard)
	case "2":
		m.active = view.NewTransactionsModel(owner, m.svc.transactions, m.svc.matching)
	case "3":
		m.active = view.NewBudgetsModel(owner, m.svc.budgets)
	case "4":
		m.active = view.NewImportModel(owner, m.svc.imports)
	case "5":
		m.active = view.NewExportModel(owner, m.svc.exports)
	default:
		return m, nil
	}

	m.currentView = ViewScreen

	return m, m.active.Init()
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"SmartLedger\n" +
				lipgloss.NewStyle().Faint(true).Render("Signed in as "+m.user.Email) + "\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Budgets\n" +
				"4. Import CSV\n" +
				"5. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewScreen:
		return m.active.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
