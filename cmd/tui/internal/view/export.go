package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

const exportTimeout = 2 * time.Minute

type exportStep int

const (
	exportPickPeriod exportStep = iota
	exportPickDir
	exportWriting
	exportDone
)

// ExportModel writes the transactions of a chosen period to an XLSX
// workbook on disk.
type ExportModel struct {
	CommonModel
	exportService *export.Service

	step    exportStep
	period  TimeframePicker
	chosen  TimeframeSelectedMsg
	dirForm *huh.Form
	dir     *string
	busy    spinner.Model

	written exportWrittenMsg
}

func NewExportModel(common CommonModel, svc *export.Service) ExportModel {
	busy := spinner.New()
	busy.Spinner = spinner.MiniDot
	busy.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return ExportModel{
		CommonModel:   common,
		exportService: svc,
		period:        NewTimeframePicker(TimeframeThisMonth),
		dir:           new("./exports"),
		busy:          busy,
	}
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	if m.step == exportDone {
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.chosen = msg
		m.step = exportPickDir
		m.dirForm = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Save workbook to").
					Description("Missing directories are created").
					Placeholder("./exports").
					Value(m.dir),
			),
		).WithWidth(50).WithShowHelp(false)

		return m, m.dirForm.Init()

	case exportWrittenMsg:
		m.step = exportDone
		m.written = msg

		return m, nil

	case spinner.TickMsg:
		if m.step != exportWriting {
			return m, nil
		}

		var cmd tea.Cmd
		m.busy, cmd = m.busy.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.back()
		}
	}

	var cmd tea.Cmd

	switch m.step {
	case exportPickPeriod:
		m.period, cmd = m.period.Update(msg)
	case exportPickDir:
		var form tea.Model
		form, cmd = m.dirForm.Update(msg)
		m.dirForm = form.(*huh.Form)

		if m.dirForm.State == huh.StateCompleted {
			m.step = exportWriting
			return m, tea.Batch(m.busy.Tick, m.writeCmd(m.chosen.Filter(), *m.dir))
		}
	}

	return m, cmd
}

func (m ExportModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case exportPickPeriod:
		if !m.period.IsSelecting() {
			// Leaves the custom range inputs.
			var cmd tea.Cmd
			m.period, cmd = m.period.Update(tea.KeyMsg{Type: tea.KeyEsc})

			return m, cmd
		}

		return m, Back
	case exportPickDir:
		m.step = exportPickPeriod
		m.period.Reset()

		return m, nil
	case exportDone:
		return m, Back
	}

	return m, nil
}

func (m ExportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case exportPickPeriod:
		return pad.Render(m.period.View())
	case exportPickDir:
		return pad.Render("Period: " + activeStyle(m.chosen.Label) + "\n\n" + m.dirForm.View())
	case exportWriting:
		return pad.Render(m.busy.View() + " Writing workbook...")
	}

	if m.written.err != nil {
		return pad.Render(errorStyle.Render(fmt.Sprintf("Export failed: %v", m.written.err)))
	}

	return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Bold(true).Render("Saved "+m.written.path),
		"",
		m.written.summary,
	))
}

type exportWrittenMsg struct {
	path    string
	summary string
	err     error
}

// exportFileName stamps the workbook name with the local time.
func exportFileName(now time.Time) string {
	return "transactions_" + now.Format("20060102_150405") + ".xlsx"
}

func (m ExportModel) writeCmd(filter transaction.ListFilter, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path, err := m.writeWorkbook(ctx, filter, dir)
		if err != nil {
			return exportWrittenMsg{err: err}
		}

		summary, err := m.exportService.Text(ctx, filter)

		return exportWrittenMsg{path: path, summary: summary, err: err}
	}
}

func (m ExportModel) writeWorkbook(ctx context.Context, filter transaction.ListFilter, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, exportFileName(time.Now()))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := m.exportService.WriteXLSX(ctx, f, filter); err != nil {
		f.Close()
		os.Remove(path)

		return "", err
	}

	return path, f.Close()
}
