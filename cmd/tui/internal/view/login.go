package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
)

// LoggedInMsg carries the principal of the operator who signed in.
type LoggedInMsg struct {
	Principal auth.Principal
}

type loginResultMsg struct {
	principal auth.Principal
	err       error
}

type LoginModel struct {
	userService *user.Service

	form   *huh.Form
	values *loginValues
	err    error
	busy   bool
}

type loginValues struct {
	Username string
	Password string
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	m := LoginModel{userService: userSvc, values: &loginValues{}}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) buildForm() *huh.Form {
	notBlank := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}

			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&m.values.Username).
				Validate(notBlank("username")),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.values.Password).
				Validate(notBlank("password")),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Enter: submit | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if result.err != nil {
			m.err = result.err
			m.values.Password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Principal: result.principal} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true

	return m, m.loginCmd(m.values.Username, m.values.Password)
}

func (m LoginModel) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.userService.Authenticate(ctx, username, password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		return loginResultMsg{principal: u.Principal()}
	}
}

func (m LoginModel) View() string {
	body := m.form.View()

	if m.busy {
		body = "Signing in..."
	}

	if m.err != nil {
		msg := m.err.Error()
		if !errors.Is(m.err, user.ErrInvalidCredentials) {
			msg = "Sign in failed: " + msg
		}

		body = errorStyle.Render(msg) + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(2).Render("Back Office\n\n" + body)
}
