package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type completeModel struct {
	state *switchState
}

func newCompleteModel(state *switchState) *completeModel {
	return &completeModel{state: state}
}

func (m *completeModel) Init() tea.Cmd {
	return nil
}

func (m *completeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && (isEnter(msg) || isEsc(msg)) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *completeModel) View() string {
	var b strings.Builder
	host := m.state.target.Host

	b.WriteString(successStyle.Render("Switch complete"))
	b.WriteString("\n\n")
	b.WriteString(normalStyle.Render("  Site now is available at " + host))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  " + m.state.sw.Disable().Host + " is stopped and will not start on boot"))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Next steps"))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render("  Check both sites:"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("    $ sitectl status --hosts " + host + "," + m.state.sw.Disable().Host))
	b.WriteString("\n")
	b.WriteString(normalStyle.Render("  Switch back:"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("    $ sitectl switch --hosts " + m.state.sw.Disable().Host))
	b.WriteString("\n\n")

	renderButtons(&b, []string{"Exit"}, 0)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter/esc exit"))
	return b.String()
}
