package sitectl

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote"
)

// Phase is how far a switchover has progressed. Each phase admits exactly one
// transition, to the phase that follows it.
type Phase int

const (
	PhasePending Phase = iota
	PhaseProxyStopped
	PhaseWorkerStopped
	PhaseProxyRelinked
	PhaseAutostartSwapped
	PhaseProxyStarted
	PhaseComplete
)

var phaseNames = map[Phase]string{
	PhasePending:          "pending",
	PhaseProxyStopped:     "proxy-stopped",
	PhaseWorkerStopped:    "worker-stopped",
	PhaseProxyRelinked:    "proxy-relinked",
	PhaseAutostartSwapped: "autostart-swapped",
	PhaseProxyStarted:     "proxy-started",
	PhaseComplete:         "complete",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type transition struct {
	name  string
	label func(s *Switchover) string
	run   func(ctx context.Context, s *Switchover) error
}

// transitions is keyed by the phase the transition leaves. Nginx goes down
// before sites-enabled changes, and the old worker stops before the new one
// starts.
var transitions = map[Phase]transition{
	PhasePending: {
		name:  "stop-proxy",
		label: func(*Switchover) string { return "Stopping nginx service" },
		run: func(ctx context.Context, s *Switchover) error {
			return systemctl(ctx, s.host, "stop", proxyService)
		},
	},
	PhaseProxyStopped: {
		name: "stop-worker",
		label: func(s *Switchover) string {
			return fmt.Sprintf("Stopping %s service for %s", s.layout.Worker, s.disable)
		},
		run: func(ctx context.Context, s *Switchover) error {
			return systemctl(ctx, s.host, "stop", s.layout.Unit(s.disable))
		},
	},
	PhaseWorkerStopped: {
		name:  "relink-proxy",
		label: func(s *Switchover) string { return fmt.Sprintf("Switching nginx site to %s", s.enable) },
		run: func(ctx context.Context, s *Switchover) error {
			return relinkNginxSite(ctx, s.host, s.layout, s.enable, s.disable)
		},
	},
	PhaseProxyRelinked: {
		name: "swap-autostart",
		label: func(s *Switchover) string {
			return fmt.Sprintf("Switching %s autostart to %s", s.layout.Worker, s.enable)
		},
		run: func(ctx context.Context, s *Switchover) error {
			if err := systemctl(ctx, s.host, "disable", s.layout.Unit(s.disable)); err != nil {
				return err
			}
			return systemctl(ctx, s.host, "enable", s.layout.Unit(s.enable))
		},
	},
	PhaseAutostartSwapped: {
		name:  "start-proxy",
		label: func(*Switchover) string { return "Starting nginx service" },
		run: func(ctx context.Context, s *Switchover) error {
			return systemctl(ctx, s.host, "start", proxyService)
		},
	},
	PhaseProxyStarted: {
		name:  "start-worker",
		label: func(s *Switchover) string { return fmt.Sprintf("Starting %s for %s", s.layout.Worker, s.enable) },
		run: func(ctx context.Context, s *Switchover) error {
			return systemctl(ctx, s.host, "start", s.layout.Unit(s.enable))
		},
	},
}

// Switchover makes one site of a prod/staging pair the served one.
type Switchover struct {
	host    *remote.Host
	layout  Layout
	enable  Target
	disable Target
	phase   Phase
	out     io.Writer
	logger  *zap.Logger
}

// NewSwitchover prepares a switch to enable. Progress lines go to out.
func NewSwitchover(host *remote.Host, layout Layout, enable Target, out io.Writer, logger *zap.Logger) *Switchover {
	if out == nil {
		out = io.Discard
	}
	return &Switchover{
		host:    host,
		layout:  layout,
		enable:  enable,
		disable: enable.Counterpart(),
		out:     out,
		logger:  logger.With(zap.String("enable", enable.Host), zap.String("disable", enable.Counterpart().Host)),
	}
}

func (s *Switchover) Enable() Target  { return s.enable }
func (s *Switchover) Disable() Target { return s.disable }
func (s *Switchover) Phase() Phase    { return s.phase }
func (s *Switchover) Done() bool      { return s.phase == PhaseComplete }

// Labels lists the human readable label of every step, in order.
func (s *Switchover) Labels() []string {
	labels := make([]string, 0, len(transitions))
	for p := PhasePending; p < PhaseComplete; p++ {
		labels = append(labels, transitions[p].label(s))
	}
	return labels
}

// Step runs the single transition available from the current phase.
func (s *Switchover) Step(ctx context.Context) error {
	tr, ok := transitions[s.phase]
	if !ok {
		return fmt.Errorf("switch to %s already %s", s.enable, s.phase)
	}
	label := tr.label(s)
	fmt.Fprintf(s.out, "%s ...\n", label)
	s.logger.Info("switch step", zap.String("step", tr.name), zap.Stringer("phase", s.phase))

	if err := tr.run(ctx, s); err != nil {
		s.logger.Error("switch step failed", zap.String("step", tr.name), zap.Stringer("phase", s.phase), zap.Error(err))
		return stepErr(ErrSwitch, s.enable.Host, tr.name, err)
	}
	s.phase++
	fmt.Fprintf(s.out, "%s: done\n", label)
	return nil
}

// Run announces the switch and steps it to completion, stopping at the first
// failure. The phase then reflects the last completed step.
func (s *Switchover) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "We will switch from %s to %s\n", s.disable, s.enable)
	for !s.Done() {
		if err := s.Step(ctx); err != nil {
			fmt.Fprintf(s.out, "Switch stopped after phase %s\n", s.phase)
			return err
		}
	}
	fmt.Fprintf(s.out, "Site now is available at %s\n", s.enable)
	return nil
}

// SiteState is which site of a pair nginx currently serves.
type SiteState int

const (
	// StateTransient means both or neither site is enabled.
	StateTransient SiteState = iota
	StateProdEnabled
	StateStagingEnabled
)

func (s SiteState) String() string {
	switch s {
	case StateProdEnabled:
		return "prod-enabled"
	case StateStagingEnabled:
		return "staging-enabled"
	}
	return "transient"
}

// ObserveSiteState reads the nginx sites-enabled links of t and its
// counterpart.
func ObserveSiteState(ctx context.Context, host *remote.Host, layout Layout, t Target) (SiteState, error) {
	mine, err := nginxSiteEnabled(ctx, host, layout, t)
	if err != nil {
		return StateTransient, err
	}
	other, err := nginxSiteEnabled(ctx, host, layout, t.Counterpart())
	if err != nil {
		return StateTransient, err
	}
	switch {
	case mine == other:
		return StateTransient, nil
	case mine:
		return stateFor(t.Kind), nil
	}
	return stateFor(t.Kind.Other()), nil
}

func stateFor(k SiteKind) SiteState {
	if k == KindProd {
		return StateProdEnabled
	}
	return StateStagingEnabled
}
