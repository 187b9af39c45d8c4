package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views. Principal is the operator who
// logged in; services check it on every write.
type CommonModel struct {
	Principal auth.Principal
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
