package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type statsState int

const (
	statsStateTimeframe statsState = iota
	statsStateResult
)

// StatsModel shows per-currency incomes, expenses and balance for a period.
type StatsModel struct {
	CommonModel
	txService *transaction.Service

	state           statsState
	timeframePicker TimeframePicker
	label           string
	stats           transaction.Stats
	loading         bool
	err             error
}

func NewStatsModel(txSvc *transaction.Service) StatsModel {
	return StatsModel{
		txService:       txSvc,
		timeframePicker: NewTimeframePicker(TimeframeToday),
	}
}

func (m StatsModel) Title() string { return "Dashboard" }

func (m StatsModel) ShortHelp() string {
	if m.state == statsStateResult {
		return "Esc: pick another period"
	}

	return "Esc: back | Enter: select"
}

func (m StatsModel) Init() tea.Cmd {
	return nil
}

type statsLoadedMsg struct {
	stats transaction.Stats
	err   error
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.label = msg.Label
		m.loading = true
		m.err = nil
		m.state = statsStateResult

		return m, m.loadCmd(msg.Filter())

	case statsLoadedMsg:
		m.loading = false
		m.stats, m.err = msg.stats, msg.err

		return m, nil

	case tea.KeyMsg:
		if m.state == statsStateResult {
			if msg.Type == tea.KeyEsc {
				m.state = statsStateTimeframe
				m.timeframePicker.Reset()
			}

			return m, nil
		}

		if msg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	if m.state != statsStateTimeframe {
		return m, nil
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m StatsModel) loadCmd(filter transaction.ListFilter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.txService.Stats(ctx, filter)

		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m StatsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch {
	case m.state == statsStateTimeframe:
		return style.Render(m.timeframePicker.View())
	case m.loading:
		return style.Render("Loading...")
	case m.err != nil:
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return style.Render(RenderStats(m.label, m.stats))
}

// RenderStats lays the totals out as one row per currency.
func RenderStats(label string, stats transaction.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Period: %s\n\n", activeStyle(label))
	fmt.Fprintf(&b, "%-6s %18s %18s %18s\n", "", "Incomes", "Expenses", "Balance")

	for _, c := range transaction.Currencies {
		t := stats[c]
		fmt.Fprintf(&b, "%-6s %18s %18s %18s\n",
			c.Code(),
			format.Thousands(t.Incomes),
			format.Thousands(t.Expenses),
			format.Thousands(t.Balance),
		)
	}

	return b.String()
}
