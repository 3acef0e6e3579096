package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/sitectl/internal/sitectl"
)

type preflightDoneMsg struct {
	results []sitectl.CheckResult
	current sitectl.SiteState
	err     error
}

type preflightModel struct {
	state   *switchState
	spinner spinner.Model
	results []sitectl.CheckResult
	err     error
	done    bool
	cursor  int
}

func newPreflightModel(state *switchState) *preflightModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &preflightModel{state: state, spinner: sp}
}

func (m *preflightModel) Init() tea.Cmd {
	m.results = nil
	m.err = nil
	m.done = false
	m.cursor = 0
	return tea.Batch(m.spinner.Tick, m.runChecks())
}

func (m *preflightModel) runChecks() tea.Cmd {
	s := m.state
	return func() tea.Msg {
		results := s.ops.RunChecks(s.ctx, s.target)
		current, err := sitectl.ObserveSiteState(s.ctx, s.ops.Host(s.target), s.ops.Layout(), s.target)
		return preflightDoneMsg{results: results, current: current, err: err}
	}
}

func (m *preflightModel) failed() int {
	n := 0
	for _, r := range m.results {
		if !r.OK {
			n++
		}
	}
	return n
}

func (m *preflightModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case preflightDoneMsg:
		m.done = true
		m.results = msg.results
		m.err = msg.err
		m.state.current = msg.current
		if m.err == nil && m.failed() == 0 {
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
		return m, nil

	case tea.KeyMsg:
		if !m.done {
			return m, nil
		}
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
			if m.cursor == 0 && m.err == nil {
				return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
			}
			m.state.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *preflightModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pre-flight Checks"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(m.state.target.Host))
	b.WriteString("\n\n")

	if !m.done {
		b.WriteString(fmt.Sprintf("  %s Checking host...\n", m.spinner.View()))
		return b.String()
	}

	for _, r := range m.results {
		if r.OK {
			b.WriteString(fmt.Sprintf("  %s %s\n", successStyle.Render("OK"), normalStyle.Render(r.Name)))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", warningStyle.Render("!!"), normalStyle.Render(r.Name)))
		b.WriteString("     " + mutedStyle.Render(r.Err.Error()) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Cannot read the nginx site links: " + m.err.Error()))
		b.WriteString("\n\n")
		renderButtons(&b, []string{"Exit"}, 0)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc exit"))
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(warningStyle.Render(fmt.Sprintf("  %d check(s) failed. The switch may not complete.", m.failed())))
	b.WriteString("\n\n")
	renderButtons(&b, []string{"Continue", "Cancel"}, m.cursor)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ select • enter confirm • esc cancel"))
	return b.String()
}
