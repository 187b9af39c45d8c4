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
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
)

type warehouseState int

const (
	warehouseStateBrowse warehouseState = iota
	warehouseStateAddItem
	warehouseStateMovement
)

type WarehouseModel struct {
	CommonModel
	warehouseService *warehouse.Service

	state warehouseState
	table table.Model
	items []*warehouse.Item
	form  *huh.Form

	movementType warehouse.MovementType
	movementItem *warehouse.Item
	values       *stockFormValues

	loading bool
	err     error
	status  string
}

type stockFormValues struct {
	Name        string
	Description string
	Quantity    string
	Kg          string
}

func NewWarehouseModel(common CommonModel, svc *warehouse.Service) WarehouseModel {
	return WarehouseModel{
		CommonModel:      common,
		warehouseService: svc,
		table: newTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Quantity", Width: 12},
			{Title: "Kg", Width: 14},
			{Title: "Description", Width: 40},
		}),
		values:  &stockFormValues{},
		loading: true,
	}
}

func (m WarehouseModel) Title() string { return "Warehouse" }

func (m WarehouseModel) ShortHelp() string {
	if m.state != warehouseStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add item | i: stock in | o: stock out | r: refresh"
}

func (m WarehouseModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m WarehouseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadItemsMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.refreshTable()

		return m, nil

	case stockSavedMsg:
		m.state = warehouseStateBrowse
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

	if m.state != warehouseStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.startAddItem()
		case "i":
			return m.startMovement(warehouse.MovementIn)
		case "o":
			return m.startMovement(warehouse.MovementOut)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func validateQuantity(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	_, err := ParseWhole(s)

	return err
}

func validateKg(s string) error {
	_, err := ParseKg(s)
	return err
}

func (m WarehouseModel) startAddItem() (tea.Model, tea.Cmd) {
	*m.values = stockFormValues{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.values.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}

					return nil
				}),
			huh.NewInput().Title("Description").Value(&m.values.Description),
			huh.NewInput().Title("Quantity").Placeholder("0").Value(&m.values.Quantity).Validate(validateQuantity),
			huh.NewInput().Title("Weight, kg").Placeholder("0").Value(&m.values.Kg).Validate(validateKg),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = warehouseStateAddItem
	m.table.Blur()

	return m, m.form.Init()
}

func (m WarehouseModel) startMovement(typ warehouse.MovementType) (tea.Model, tea.Cmd) {
	item := m.selected()
	if item == nil {
		return m, nil
	}

	*m.values = stockFormValues{}
	m.movementType = typ
	m.movementItem = item

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Quantity").Placeholder("0").Value(&m.values.Quantity).Validate(validateQuantity),
			huh.NewInput().Title("Weight, kg").Placeholder("0").Value(&m.values.Kg).Validate(validateKg),
			huh.NewInput().Title("Description").Value(&m.values.Description),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = warehouseStateMovement
	m.table.Blur()

	return m, m.form.Init()
}

func (m WarehouseModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = warehouseStateBrowse
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

	if m.state == warehouseStateAddItem {
		return m, m.createItemCmd()
	}

	return m, m.movementCmd(m.movementItem)
}

func (m WarehouseModel) selected() *warehouse.Item {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m *WarehouseModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		rows = append(rows, table.Row{
			item.Name,
			format.Thousands(item.Quantity),
			format.Kg(item.QuantityKg),
			item.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m WarehouseModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading items...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.form != nil && m.state != warehouseStateBrowse {
		title := "New Item"
		if m.state == warehouseStateMovement {
			title = fmt.Sprintf("Stock %s: %s", m.movementType, m.movementItem.Name)
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

// ParseKg reads a non-negative weight; a comma works as the decimal
// separator and an empty value means zero.
func ParseKg(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, errors.New("weight must be a non-negative number")
	}

	return d, nil
}

func (v stockFormValues) quantities() (int64, decimal.Decimal) {
	var q int64
	if strings.TrimSpace(v.Quantity) != "" {
		q, _ = ParseWhole(v.Quantity)
	}

	kg, _ := ParseKg(v.Kg)

	return q, kg
}

// Messages

type loadItemsMsg struct {
	items []*warehouse.Item
	err   error
}

type stockSavedMsg struct {
	status string
	err    error
}

func (m WarehouseModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.warehouseService.ListItems(ctx)

		return loadItemsMsg{items: items, err: err}
	}
}

func (m WarehouseModel) createItemCmd() tea.Cmd {
	values := *m.values
	quantity, kg := values.quantities()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		item, err := m.warehouseService.CreateItem(ctx, m.Principal, warehouse.CreateItemParams{
			Name:        values.Name,
			Description: values.Description,
			Quantity:    quantity,
			QuantityKg:  kg,
		})
		if err != nil {
			return stockSavedMsg{err: err}
		}

		return stockSavedMsg{status: fmt.Sprintf("Added %s.", item.Name)}
	}
}

func (m WarehouseModel) movementCmd(item *warehouse.Item) tea.Cmd {
	if item == nil {
		return nil
	}

	values := *m.values
	quantity, kg := values.quantities()
	typ := m.movementType

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, next, err := m.warehouseService.AddMovement(ctx, m.Principal, warehouse.AddMovementParams{
			ItemID:      item.ID,
			Type:        typ,
			Quantity:    quantity,
			QuantityKg:  kg,
			Date:        time.Now(),
			Description: values.Description,
		})
		if err != nil {
			return stockSavedMsg{err: err}
		}

		return stockSavedMsg{status: fmt.Sprintf("%s: %s pcs, %s kg on hand.",
			next.Name, format.Thousands(next.Quantity), format.Kg(next.QuantityKg))}
	}
}
