package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

const importTimeout = 2 * time.Minute

var errNoMethods = errors.New("create a payment method before importing")

type importStep int

const (
	importDefaults importStep = iota
	importPickFile
	importRunning
	importReview
	importFinished
)

// ImportModel walks the operator through a CSV import: defaults, file,
// duplicate review.
type ImportModel struct {
	CommonModel
	txService       *transaction.Service
	importService   *importer.Service
	matchingService *matching.Service

	step     importStep
	methods  []*transaction.Method
	form     *huh.Form
	defaults *importer.Defaults
	picker   filepicker.Model

	pending   []transaction.CreateParams
	conflicts *conflictSet
	review    list.Model

	status string
	err    error
}

func NewImportModel(common CommonModel, txSvc *transaction.Service, impSvc *importer.Service, matchSvc *matching.Service) ImportModel {
	picker := filepicker.New()
	picker.CurrentDirectory, _ = os.Getwd()
	picker.AllowedTypes = []string{".csv", ".txt"}
	picker.SetHeight(15)

	return ImportModel{
		CommonModel:     common,
		txService:       txSvc,
		importService:   impSvc,
		matchingService: matchSvc,
		defaults:        &importer.Defaults{Currency: transaction.DefaultCurrency},
		picker:          picker,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	if m.step == importReview {
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadMethodsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importMethodsMsg:
		if msg.err == nil && len(msg.methods) == 0 {
			msg.err = errNoMethods
		}

		if msg.err != nil {
			return m.finish("", msg.err), nil
		}

		m.methods = msg.methods

		return m.restart()

	case importParsedMsg:
		if msg.err != nil {
			return m.finish("", msg.err), nil
		}

		if len(msg.result.Conflicts) == 0 {
			return m.finish(fmt.Sprintf("Imported %d transactions.", len(msg.result.Imported)), nil), nil
		}

		return m.startReview(msg.result), nil

	case importSavedMsg:
		if msg.err != nil {
			return m.finish("", msg.err), nil
		}

		return m.finish(fmt.Sprintf("Imported %d transactions.", msg.count), nil), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.step == importDefaults || (m.step == importFinished && len(m.methods) == 0) {
				return m, Back
			}

			return m.restart()
		}

		if m.step == importReview {
			return m.updateReview(msg)
		}
	}

	switch m.step {
	case importDefaults:
		return m.updateDefaults(msg)
	case importPickFile:
		return m.updatePicker(msg)
	}

	return m, nil
}

func (m ImportModel) finish(status string, err error) ImportModel {
	m.step = importFinished
	m.status = status
	m.err = err

	return m
}

// restart shows the defaults form again, keeping the last choices.
func (m ImportModel) restart() (tea.Model, tea.Cmd) {
	m.step = importDefaults
	m.pending = nil
	m.conflicts = nil
	m.status = ""
	m.err = nil

	if m.defaults.MethodID == uuid.Nil {
		m.defaults.MethodID = m.methods[0].ID
	}

	methods := make([]huh.Option[uuid.UUID], 0, len(m.methods))
	for _, method := range m.methods {
		methods = append(methods, huh.NewOption(method.Name, method.ID))
	}

	currencies := make([]huh.Option[transaction.Currency], 0, len(transaction.Currencies))
	for _, c := range transaction.Currencies {
		currencies = append(currencies, huh.NewOption(c.Code(), c))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Payment method").
				Options(methods...).
				Value(&m.defaults.MethodID),
			huh.NewSelect[transaction.Currency]().
				Title("Currency for rows without one").
				Options(currencies...).
				Value(&m.defaults.Currency),
		),
	).WithWidth(50).WithShowHelp(false)

	return m, m.form.Init()
}

func (m ImportModel) updateDefaults(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	m.form = form.(*huh.Form)

	if m.form.State == huh.StateCompleted {
		m.step = importPickFile
		return m, m.picker.Init()
	}

	return m, cmd
}

func (m ImportModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.step = importRunning
		m.status = "Reading " + path + "..."

		return m, m.importCmd(path, *m.defaults)
	}

	return m, cmd
}

func (m ImportModel) startReview(result *transaction.ImportResult) ImportModel {
	m.step = importReview
	m.pending = result.New
	m.conflicts = newConflictSet(result.Conflicts)

	items := make([]list.Item, len(result.Conflicts))
	for i := range result.Conflicts {
		items[i] = conflictItem(i)
	}

	m.review = list.New(items, conflictDelegate{set: m.conflicts}, 80, 20)
	m.review.Title = fmt.Sprintf("%d rows already exist, %d are new. Import the duplicates too?",
		len(result.Conflicts), len(result.New))
	m.review.SetShowStatusBar(false)
	m.review.SetFilteringEnabled(false)
	m.review.SetShowHelp(false)

	return m
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		m.conflicts.toggle(m.review.Index())
		return m, nil
	case "a":
		m.conflicts.setAll(true)
		return m, nil
	case "n":
		m.conflicts.setAll(false)
		return m, nil
	case "enter":
		m.step = importRunning
		m.status = "Saving..."

		return m, m.saveCmd(m.conflicts.merge(m.pending))
	}

	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)

	return m, cmd
}

func (m ImportModel) methodName(id uuid.UUID) string {
	for _, method := range m.methods {
		if method.ID == id {
			return method.Name
		}
	}

	return "-"
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1, 2)

	switch m.step {
	case importDefaults:
		if m.form == nil {
			return pad.Render("Loading payment methods...")
		}

		return pad.Render("Import defaults\n\n" + m.form.View())
	case importPickFile:
		return pad.Render(fmt.Sprintf("CSV file for %s, %s:\n\n%s",
			m.methodName(m.defaults.MethodID), m.defaults.Currency.Code(), m.picker.View()))
	case importRunning:
		return pad.Render(m.status)
	case importReview:
		return pad.Render(m.review.View())
	}

	if m.err != nil {
		return pad.Render(errorStyle.Render("Import failed: "+m.err.Error()) + "\n\n(Esc to go back)")
	}

	return pad.Render(successStyle.Render(m.status) + "\n\n(Esc to import another file)")
}

// Messages

type importMethodsMsg struct {
	methods []*transaction.Method
	err     error
}

type importParsedMsg struct {
	result *transaction.ImportResult
	err    error
}

type importSavedMsg struct {
	count int
	err   error
}

func (m ImportModel) loadMethodsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		methods, err := m.txService.ListMethods(ctx)

		return importMethodsMsg{methods: methods, err: err}
	}
}

func (m ImportModel) importCmd(path string, defaults importer.Defaults) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importParsedMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(importer.FormatCSV, f, defaults)
		if err != nil {
			return importParsedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.matchingService.Apply(ctx, params); err != nil {
			return importParsedMsg{err: err}
		}

		result, err := m.txService.ImportBatch(ctx, m.Principal, params)

		return importParsedMsg{result: result, err: err}
	}
}

func (m ImportModel) saveCmd(params []transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, m.Principal, params)

		return importSavedMsg{count: len(txs), err: err}
	}
}

// conflictSet tracks which duplicate rows the operator wants imported anyway.
type conflictSet struct {
	rows   []transaction.Conflict
	chosen []bool
}

func newConflictSet(rows []transaction.Conflict) *conflictSet {
	return &conflictSet{rows: rows, chosen: make([]bool, len(rows))}
}

func (s *conflictSet) toggle(i int) {
	if i >= 0 && i < len(s.chosen) {
		s.chosen[i] = !s.chosen[i]
	}
}

func (s *conflictSet) setAll(v bool) {
	for i := range s.chosen {
		s.chosen[i] = v
	}
}

// merge appends the chosen duplicates to the rows that had no match.
func (s *conflictSet) merge(fresh []transaction.CreateParams) []transaction.CreateParams {
	out := append([]transaction.CreateParams(nil), fresh...)

	for i, c := range s.rows {
		if s.chosen[i] {
			out = append(out, c.Incoming)
		}
	}

	return out
}

type conflictItem int

func (conflictItem) FilterValue() string { return "" }

type conflictDelegate struct {
	set *conflictSet
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(conflictItem)
	if !ok {
		return
	}

	row := d.set.rows[i]

	mark := "[ ]"
	if d.set.chosen[i] {
		mark = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	sign := "+"
	if row.Incoming.Type == transaction.TypeExpense {
		sign = "-"
	}

	fmt.Fprintf(w, "%s%s %s  %s%s  %s\n",
		cursor, mark,
		FormatDate(row.Incoming.Date),
		sign, FormatAmount(row.Incoming.Amount, row.Incoming.Currency),
		row.Incoming.Description,
	)
	fmt.Fprint(w, faintStyle.Render(fmt.Sprintf("      matches %s  %s  %s",
		FormatDate(row.Existing.Date),
		FormatSigned(row.Existing),
		row.Existing.Description,
	)))
}
