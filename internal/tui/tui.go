// Package tui drives an interactive switchover: pre-flight checks, a
// confirmation, live step progress and a summary.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/sitectl/internal/sitectl"
)

// ErrCancelled is returned when the operator backs out before the switch
// starts.
var ErrCancelled = errors.New("switch cancelled")

type screen int

const (
	screenPreflight screen = iota
	screenConfirm
	screenProgress
	screenComplete
)

type navigateMsg struct {
	to screen
}

type switchState struct {
	ctx     context.Context
	ops     *sitectl.Operations
	target  sitectl.Target
	sw      *sitectl.Switchover
	current sitectl.SiteState

	running   bool
	cancelled bool
	err       error
}

type screenModel interface {
	Init() tea.Cmd
	Update(tea.Msg) (screenModel, tea.Cmd)
	View() string
}

type rootModel struct {
	current  screen
	state    *switchState
	screens  map[screen]screenModel
	width    int
	height   int
	quitting bool
}

func newRootModel(state *switchState) rootModel {
	return rootModel{
		current: screenPreflight,
		state:   state,
		screens: map[screen]screenModel{
			screenPreflight: newPreflightModel(state),
			screenConfirm:   newConfirmModel(state),
			screenProgress:  newProgressModel(state),
			screenComplete:  newCompleteModel(state),
		},
	}
}

// RunSwitch switches t's host pair to t in a full screen terminal UI.
func RunSwitch(ctx context.Context, ops *sitectl.Operations, t sitectl.Target) error {
	state := &switchState{
		ctx:    ctx,
		ops:    ops,
		target: t,
		sw:     ops.NewSwitchover(t, nil),
	}
	p := tea.NewProgram(newRootModel(state), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	if state.cancelled {
		return ErrCancelled
	}
	return state.err
}

func (m rootModel) Init() tea.Cmd {
	return m.screens[m.current].Init()
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// A step in flight must finish so the phase stays accurate.
		if isQuit(msg) && !m.state.running {
			if m.state.err == nil && m.state.sw.Phase() == sitectl.PhasePending {
				m.state.cancelled = true
			}
			m.quitting = true
			return m, tea.Quit
		}

	case navigateMsg:
		m.current = msg.to
		return m, m.screens[m.current].Init()
	}

	s := m.screens[m.current]
	next, cmd := s.Update(msg)
	m.screens[m.current] = next
	return m, cmd
}

func (m rootModel) View() string {
	if m.quitting {
		return ""
	}
	return m.screens[m.current].View()
}
