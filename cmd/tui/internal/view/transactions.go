package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateAdd
	txStateConfirmDelete
)

var (
	typeFilters     = []transaction.Type{"", transaction.TypeIncome, transaction.TypeExpense}
	currencyFilters = append([]transaction.Currency{""}, transaction.Currencies...)
	dateFilters     = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth}
)

type TransactionsModel struct {
	CommonModel
	txService *transaction.Service

	state   txState
	table   table.Model
	txs     []*transaction.Transaction
	methods []*transaction.Method
	form    *huh.Form

	typeIdx     int
	currencyIdx int
	dateIdx     int

	loading bool
	err     error
	status  string

	values *txFormValues
}

// txFormValues lives behind a pointer so huh keeps writing to the same
// fields while the model is copied between updates.
type txFormValues struct {
	Type     transaction.Type
	Currency transaction.Currency
	Amount   string
	Desc     string
	Date     string
	Method   uuid.UUID
	Confirm  bool
}

func newTable(columns []table.Column) table.Model {
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

	return t
}

func NewTransactionsModel(common CommonModel, txSvc *transaction.Service) TransactionsModel {
	return TransactionsModel{
		CommonModel: common,
		txService:   txSvc,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Type", Width: 8},
			{Title: "Amount", Width: 20},
			{Title: "Method", Width: 14},
			{Title: "Description", Width: 40},
		}),
		loading: true,
		values:  &txFormValues{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateAdd:
		return "Navigate form | Esc: cancel"
	case txStateConfirmDelete:
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | a: add | x: delete | t: type | c: currency | d: date | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) filter() transaction.ListFilter {
	var f transaction.ListFilter

	if t := typeFilters[m.typeIdx]; t != "" {
		f.Type = &t
	}

	if c := currencyFilters[m.currencyIdx]; c != "" {
		f.Currency = &c
	}

	if tf := dateFilters[m.dateIdx]; tf != TimeframeAll {
		start, end := tf.DateRange(time.Now())
		f.DateFrom, f.DateTo = &start, &end
	}

	return f
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.methods = msg.methods
		m.refreshTable()

		return m, nil

	case txSavedMsg:
		m.state = txStateBrowse
		m.form = nil
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

	switch m.state {
	case txStateAdd, txStateConfirmDelete:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			return m, m.loadCmd()
		case "c":
			m.currencyIdx = (m.currencyIdx + 1) % len(currencyFilters)
			return m, m.loadCmd()
		case "d":
			m.dateIdx = (m.dateIdx + 1) % len(dateFilters)
			return m, m.loadCmd()
		case "a":
			return m.startAdd()
		case "x":
			return m.startDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startAdd() (tea.Model, tea.Cmd) {
	if len(m.methods) == 0 {
		m.status = "Create a payment method first."
		return m, nil
	}

	*m.values = txFormValues{
		Type:     transaction.TypeIncome,
		Currency: transaction.DefaultCurrency,
		Date:     FormatDate(time.Now()),
		Method:   m.methods[0].ID,
	}

	methodOpts := make([]huh.Option[uuid.UUID], len(m.methods))
	for i, method := range m.methods {
		methodOpts[i] = huh.NewOption(method.Name, method.ID)
	}

	currencyOpts := make([]huh.Option[transaction.Currency], len(transaction.Currencies))
	for i, c := range transaction.Currencies {
		currencyOpts[i] = huh.NewOption(c.Code(), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(
					huh.NewOption("Income", transaction.TypeIncome),
					huh.NewOption("Expense", transaction.TypeExpense),
				).
				Value(&m.values.Type),

			huh.NewSelect[transaction.Currency]().
				Title("Currency").
				Options(currencyOpts...).
				Value(&m.values.Currency),

			huh.NewInput().
				Title("Amount").
				Placeholder("1 500 000").
				Value(&m.values.Amount).
				Validate(func(s string) error {
					_, err := ParseWhole(s)
					return err
				}),

			huh.NewInput().
				Title("Description").
				Value(&m.values.Desc),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.values.Date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return errors.New("use YYYY-MM-DD")
					}

					return nil
				}),

			huh.NewSelect[uuid.UUID]().
				Title("Payment method").
				Options(methodOpts...).
				Value(&m.values.Method),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) startDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.values.Confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %s?", FormatDate(tx.Date), FormatSigned(tx))).
				Description(tx.Description).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.values.Confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
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

	if m.state == txStateAdd {
		return m, m.createCmd()
	}

	if !m.values.Confirm {
		return m, func() tea.Msg { return txSavedMsg{} }
	}

	return m, m.deleteCmd(m.selected())
}

func (m TransactionsModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	typeLabel, currencyLabel := "All", "All"
	if t := typeFilters[m.typeIdx]; t != "" {
		typeLabel = string(t)
	}

	if c := currencyFilters[m.currencyIdx]; c != "" {
		currencyLabel = c.Code()
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [c] Currency: %s | [d] Date: %s",
		activeStyle(typeLabel),
		activeStyle(currencyLabel),
		activeStyle(dateFilters[m.dateIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.form != nil && m.state != txStateBrowse {
		title := "New Transaction"
		if m.state == txStateConfirmDelete {
			title = "Delete Transaction"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			FormatSigned(tx),
			tx.MethodName,
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// ParseWhole reads a non-negative whole amount typed with optional space,
// dot or comma grouping: "1 500 000", "1.500.000".
func ParseWhole(s string) (int64, error) {
	clean := strings.NewReplacer(" ", "", ".", "", ",", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, errors.New("amount is required")
	}

	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New("amount must be a non-negative whole number")
	}

	return n, nil
}

// Messages

type loadTxsMsg struct {
	txs     []*transaction.Transaction
	methods []*transaction.Method
	err     error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		methods, err := m.txService.ListMethods(ctx)

		return loadTxsMsg{txs: txs, methods: methods, err: err}
	}
}

type txSavedMsg struct {
	status string
	err    error
}

func (m TransactionsModel) createCmd() tea.Cmd {
	amount, _ := ParseWhole(m.values.Amount)
	date, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.values.Date))

	params := transaction.CreateParams{
		Type:        m.values.Type,
		Currency:    m.values.Currency,
		Amount:      amount,
		Description: strings.TrimSpace(m.values.Desc),
		Date:        date,
		MethodID:    m.values.Method,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Create(ctx, m.Principal, params)
		if err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Added " + FormatSigned(tx) + "."}
	}
}

func (m TransactionsModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, m.Principal, tx.ID); err != nil {
			return txSavedMsg{err: err}
		}

		return txSavedMsg{status: "Deleted."}
	}
}
