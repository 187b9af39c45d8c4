package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
)

type monthlyState int

const (
	monthlyStateBrowse monthlyState = iota
	monthlyStateOpen
	monthlyStateProduct
	monthlyStatePayment
)

// MonthlyModel lists the current month's employee ledgers.
type MonthlyModel struct {
	CommonModel
	monthlyService  *monthly.Service
	employeeService *employee.Service

	state     monthlyState
	table     table.Model
	entries   []*monthly.Entry
	employees []*employee.Employee
	form      *huh.Form
	values    *ledgerFormValues
	target    *monthly.Entry
	month     time.Time

	loading bool
	err     error
	status  string
}

type ledgerFormValues struct {
	EmployeeID  uuid.UUID
	Name        string
	Quantity    string
	Amount      string
	Description string
}

func NewMonthlyModel(common CommonModel, monthlySvc *monthly.Service, employeeSvc *employee.Service) MonthlyModel {
	return MonthlyModel{
		CommonModel:     common,
		monthlyService:  monthlySvc,
		employeeService: employeeSvc,
		table: newTable([]table.Column{
			{Title: "Employee", Width: 32},
			{Title: "Month", Width: 10},
			{Title: "Balance", Width: 18},
		}),
		values:  &ledgerFormValues{},
		month:   monthly.MonthOf(time.Now()),
		loading: true,
	}
}

func (m MonthlyModel) Title() string { return "Monthly Ledger" }

func (m MonthlyModel) ShortHelp() string {
	if m.state != monthlyStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: open entry | p: add product | y: add payment | r: refresh"
}

func (m MonthlyModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MonthlyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntriesMsg:
		m.loading = false
		m.err = msg.err
		m.entries = msg.entries
		m.employees = msg.employees
		m.refreshTable()

		return m, nil

	case ledgerSavedMsg:
		m.state = monthlyStateBrowse
		m.form = nil
		m.target = nil
		m.table.Focus()

		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	if m.state != monthlyStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.startOpen()
		case "p":
			return m.startProduct()
		case "y":
			return m.startPayment()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}

		return nil
	}
}

func validateMoney(s string) error {
	_, err := ParseMoney(s)
	return err
}

func (m MonthlyModel) startOpen() (tea.Model, tea.Cmd) {
	if len(m.employees) == 0 {
		m.status = "No active employees."
		return m, nil
	}

	*m.values = ledgerFormValues{EmployeeID: m.employees[0].ID}

	opts := make([]huh.Option[uuid.UUID], len(m.employees))
	for i, e := range m.employees {
		opts[i] = huh.NewOption(e.FullName(), e.ID)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Employee").
				Options(opts...).
				Value(&m.values.EmployeeID),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = monthlyStateOpen
	m.table.Blur()

	return m, m.form.Init()
}

func (m MonthlyModel) startProduct() (tea.Model, tea.Cmd) {
	entry := m.selected()
	if entry == nil {
		return m, nil
	}

	*m.values = ledgerFormValues{Quantity: "1"}
	m.target = entry

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Product").Value(&m.values.Name).Validate(required("product")),
			huh.NewInput().Title("Quantity").Value(&m.values.Quantity).Validate(func(s string) error {
				n, err := ParseWhole(s)
				if err == nil && n == 0 {
					return errors.New("quantity must be greater than zero")
				}

				return err
			}),
			huh.NewInput().Title("Price per unit").Placeholder("0.00").Value(&m.values.Amount).Validate(validateMoney),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = monthlyStateProduct
	m.table.Blur()

	return m, m.form.Init()
}

func (m MonthlyModel) startPayment() (tea.Model, tea.Cmd) {
	entry := m.selected()
	if entry == nil {
		return m, nil
	}

	*m.values = ledgerFormValues{}
	m.target = entry

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Amount").Placeholder("0.00").Value(&m.values.Amount).Validate(validateMoney),
			huh.NewInput().Title("Description").Value(&m.values.Description),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = monthlyStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m MonthlyModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = monthlyStateBrowse
		m.form = nil
		m.target = nil
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

	switch m.state {
	case monthlyStateOpen:
		return m, m.openCmd()
	case monthlyStateProduct:
		return m, m.productCmd()
	case monthlyStatePayment:
		return m, m.paymentCmd()
	}

	return m, nil
}

func (m MonthlyModel) selected() *monthly.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m *MonthlyModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			e.EmployeeName,
			e.Month.Format("2006-01"),
			format.Decimal(e.Balance),
		})
	}

	m.table.SetRows(rows)
}

func (m MonthlyModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().PaddingBottom(1).Render("Month: " + activeStyle(m.month.Format("January 2006")))

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.form != nil && m.state != monthlyStateBrowse {
		var title string

		switch m.state {
		case monthlyStateOpen:
			title = "Open Current Month"
		case monthlyStateProduct:
			title = "Add Product: " + m.target.EmployeeName
		case monthlyStatePayment:
			title = "Add Payment: " + m.target.EmployeeName
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(50).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// ParseMoney reads a non-negative amount with at most two decimals; a
// comma works as the decimal separator.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || !d.Equal(d.Round(2)) {
		return decimal.Zero, errors.New("enter a non-negative amount with at most 2 decimals")
	}

	return d, nil
}

// Messages

type loadEntriesMsg struct {
	entries   []*monthly.Entry
	employees []*employee.Employee
	err       error
}

type ledgerSavedMsg struct {
	status string
	err    error
}

func (m MonthlyModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.monthlyService.ListEntries(ctx, monthly.ListFilter{Month: &month})
		if err != nil {
			return loadEntriesMsg{err: err}
		}

		employees, err := m.employeeService.List(ctx, employee.ListFilter{Active: new(true)})

		return loadEntriesMsg{entries: entries, employees: employees, err: err}
	}
}

func (m MonthlyModel) openCmd() tea.Cmd {
	employeeID := m.values.EmployeeID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entry, err := m.monthlyService.CurrentEntry(ctx, m.Principal, employeeID)
		if err != nil {
			return ledgerSavedMsg{err: err}
		}

		return ledgerSavedMsg{status: "Balance " + format.Decimal(entry.Balance) + "."}
	}
}

func (m MonthlyModel) productCmd() tea.Cmd {
	entryID := m.target.ID
	values := *m.values
	quantity, _ := ParseWhole(values.Quantity)
	price, _ := ParseMoney(values.Amount)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, entry, err := m.monthlyService.AddProduct(ctx, m.Principal, monthly.AddProductParams{
			EntryID:      entryID,
			Name:         values.Name,
			Quantity:     quantity,
			PricePerUnit: price,
		})
		if err != nil {
			return ledgerSavedMsg{err: err}
		}

		return ledgerSavedMsg{status: "New balance " + format.Decimal(entry.Balance) + "."}
	}
}

func (m MonthlyModel) paymentCmd() tea.Cmd {
	entryID := m.target.ID
	values := *m.values
	amount, _ := ParseMoney(values.Amount)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, entry, err := m.monthlyService.AddPayment(ctx, m.Principal, monthly.AddPaymentParams{
			EntryID:     entryID,
			Amount:      amount,
			Description: values.Description,
			PaymentDate: time.Now(),
		})
		if err != nil {
			return ledgerSavedMsg{err: err}
		}

		return ledgerSavedMsg{status: "New balance " + format.Decimal(entry.Balance) + "."}
	}
}
