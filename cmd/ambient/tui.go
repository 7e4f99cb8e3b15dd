package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cba6f7"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

// switcher is the part of the controller the UI drives.
type switcher interface {
	SetEnabled(on bool)
	Enabled() bool
	Teardown()
}

type model struct {
	ctrl     switcher
	quitting bool
}

func newModel(ctrl switcher) model {
	return model{ctrl: ctrl}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.ctrl.Teardown()
			m.quitting = true
			return m, tea.Quit
		case " ", "enter", "m":
			m.ctrl.SetEnabled(!m.ctrl.Enabled())
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("ambient piano"))
	b.WriteString("\n\n")

	box := "[ ]"
	label := offStyle.Render("Ambient music: off")
	if m.ctrl.Enabled() {
		box = "[x]"
		label = onStyle.Render("Ambient music: on")
	}
	fmt.Fprintf(&b, "  %s %s\n\n", box, label)
	b.WriteString(statusStyle.Render("  space toggle · q quit"))
	b.WriteString("\n")
	return b.String()
}
