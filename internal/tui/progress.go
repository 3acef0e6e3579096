package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type progressStep struct {
	label  string
	status stepStatus
}

type stepDoneMsg struct {
	index int
	err   error
}

type progressModel struct {
	state   *switchState
	steps   []progressStep
	spinner spinner.Model
	done    bool
}

func newProgressModel(state *switchState) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &progressModel{state: state, spinner: sp}
}

func (m *progressModel) Init() tea.Cmd {
	m.steps = m.steps[:0]
	for _, label := range m.state.sw.Labels() {
		m.steps = append(m.steps, progressStep{label: label})
	}
	if m.state.ops.Verifier != nil {
		m.steps = append(m.steps, progressStep{label: "Checking the site answers"})
	}
	m.done = false
	m.steps[0].status = stepRunning
	m.state.running = true
	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

// runStep advances the switchover by one phase. The step after the last
// phase is the HTTP check.
func (m *progressModel) runStep(index int) tea.Cmd {
	s := m.state
	return func() tea.Msg {
		if s.sw.Done() {
			return stepDoneMsg{index: index, err: s.ops.Verify(s.ctx, s.target)}
		}
		return stepDoneMsg{index: index, err: s.sw.Step(s.ctx)}
	}
}

func (m *progressModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		if msg.err != nil {
			m.steps[msg.index].status = stepFailed
			m.state.err = msg.err
			m.state.running = false
			m.done = true
			return m, nil
		}
		m.steps[msg.index].status = stepDone

		next := msg.index + 1
		if next >= len(m.steps) {
			m.state.running = false
			m.done = true
			return m, func() tea.Msg { return navigateMsg{to: screenComplete} }
		}
		m.steps[next].status = stepRunning
		return m, m.runStep(next)

	case tea.KeyMsg:
		if m.done && m.state.err != nil && (isEnter(msg) || isEsc(msg)) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Switching to " + m.state.target.Host))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		var icon string
		switch step.status {
		case stepPending:
			icon = mutedStyle.Render("  ")
		case stepRunning:
			icon = m.spinner.View()
		case stepDone:
			icon = successStyle.Render("OK")
		case stepFailed:
			icon = errorStyle.Render("XX")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, normalStyle.Render(step.label)))
	}

	if err := m.state.err; err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + err.Error()))
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  Switch stopped after phase " + m.state.sw.Phase().String()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("\n  press enter or esc to exit"))
	}
	return b.String()
}
