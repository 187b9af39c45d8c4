package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/backoffice/internal/config"
	"github.com/MrJamesThe3rd/backoffice/internal/database"
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	employeeStore "github.com/MrJamesThe3rd/backoffice/internal/employee/store"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/backoffice/internal/matching/store"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
	monthlyStore "github.com/MrJamesThe3rd/backoffice/internal/monthly/store"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
	txStore "github.com/MrJamesThe3rd/backoffice/internal/transaction/store"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
	userStore "github.com/MrJamesThe3rd/backoffice/internal/user/store"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
	warehouseStore "github.com/MrJamesThe3rd/backoffice/internal/warehouse/store"
)

type services struct {
	users     *user.Service
	txs       *transaction.Service
	matching  *matching.Service
	importer  *importer.Service
	export    *export.Service
	employees *employee.Service
	monthly   *monthly.Service
	warehouse *warehouse.Service
}

type model struct {
	svc    services
	common view.CommonModel

	// current is nil while the menu is shown.
	current view.View
	login   view.LoginModel
	signed  bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var menu = []string{
	"1. Dashboard",
	"2. Transactions",
	"3. Warehouse",
	"4. Monthly Ledger",
	"5. Import Transactions",
	"6. Export Transactions",
}

func (m model) Init() tea.Cmd {
	return m.login.Init()
}

func (m model) open(key string) (tea.Model, tea.Cmd) {
	var v view.View

	switch key {
	case "1":
		v = view.NewStatsModel(m.svc.txs)
	case "2":
		v = view.NewTransactionsModel(m.common, m.svc.txs)
	case "3":
		v = view.NewWarehouseModel(m.common, m.svc.warehouse)
	case "4":
		v = view.NewMonthlyModel(m.common, m.svc.monthly, m.svc.employees)
	case "5":
		v = view.NewImportModel(m.common, m.svc.txs, m.svc.importer, m.svc.matching)
	case "6":
		v = view.NewExportModel(m.common, m.svc.export)
	default:
		return m, nil
	}

	m.current = v

	return m, v.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if !m.signed {
		if loggedIn, ok := msg.(view.LoggedInMsg); ok {
			m.signed = true
			m.common = view.CommonModel{Principal: loggedIn.Principal}

			return m, nil
		}

		next, cmd := m.login.Update(msg)
		m.login = next.(view.LoginModel)

		return m, cmd
	}

	if _, ok := msg.(view.BackMsg); ok {
		m.current = nil
		return m, nil
	}

	if m.current == nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}

			return m.open(keyMsg.String())
		}

		return m, nil
	}

	next, cmd := m.current.Update(msg)
	if v, ok := next.(view.View); ok {
		m.current = v
	}

	return m, cmd
}

func (m model) View() string {
	if !m.signed {
		return m.login.View()
	}

	if m.current == nil {
		role := "viewer"
		if m.common.Principal.IsStaff {
			role = "staff"
		}

		return lipgloss.NewStyle().Padding(2).Render(
			titleStyle.Render("Back Office") + "\n" +
				helpStyle.Render("Signed in as "+m.common.Principal.Username+" ("+role+")") + "\n\n" +
				strings.Join(menu, "\n") + "\n\n" +
				"q. Quit",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(1, 1, 0).Render(titleStyle.Render(m.current.Title())),
		m.current.View(),
		lipgloss.NewStyle().PaddingLeft(1).Render(helpStyle.Render(m.current.ShortHelp())),
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	txSvc := transaction.NewService(txStore.New(db))

	m := model{
		svc: services{
			users:     user.NewService(userStore.New(db)),
			txs:       txSvc,
			matching:  matching.NewService(matchingStore.New(db)),
			importer:  importer.NewService(),
			export:    export.NewService(txSvc),
			employees: employee.NewService(employeeStore.New(db)),
			monthly:   monthly.NewService(monthlyStore.New(db)),
			warehouse: warehouse.NewService(warehouseStore.New(db)),
		},
	}
	m.login = view.NewLoginModel(m.svc.users)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
