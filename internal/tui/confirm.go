package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	state  *switchState
	cursor int
}

func newConfirmModel(state *switchState) *confirmModel {
	return &confirmModel{state: state}
}

func (m *confirmModel) Init() tea.Cmd {
	m.cursor = 0
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case isLeft(msg):
			if m.cursor > 0 {
				m.cursor--
			}
		case isRight(msg):
			if m.cursor < 1 {
				m.cursor++
			}
		case isEsc(msg):
			m.state.cancelled = true
			return m, tea.Quit
		case isEnter(msg):
			if m.cursor == 0 {
				return m, func() tea.Msg { return navigateMsg{to: screenProgress} }
			}
			m.state.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	var b strings.Builder
	sw := m.state.sw

	b.WriteString(titleStyle.Render("Confirm Switch"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s  %s\n", mutedStyle.Render("Currently:"), normalStyle.Render(m.state.current.String())))
	b.WriteString(fmt.Sprintf("  %s  %s\n", mutedStyle.Render("Disable:  "), normalStyle.Render(sw.Disable().Host)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", mutedStyle.Render("Enable:   "), selectedStyle.Render(sw.Enable().Host)))
	b.WriteString("\n")

	for i, label := range sw.Labels() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d. %s", i+1, label)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render("  Equivalent command:"))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render("  $ sitectl switch --hosts " + m.state.target.Host))
	b.WriteString("\n\n")

	renderButtons(&b, []string{"Switch", "Cancel"}, m.cursor)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ select • enter confirm • esc cancel"))
	return b.String()
}
