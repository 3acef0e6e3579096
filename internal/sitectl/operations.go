package sitectl

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote"
)

// Operations runs the runbook operations against single targets.
type Operations struct {
	cfg     Config
	layout  Layout
	exec    remote.Executor
	commits CommitResolver
	out     io.Writer
	logger  *zap.Logger

	// Verifier, when set, checks a site answers after a switch.
	Verifier *Verifier
}

func NewOperations(cfg Config, exec remote.Executor, commits CommitResolver, out io.Writer, logger *zap.Logger) *Operations {
	if out == nil {
		out = io.Discard
	}
	return &Operations{
		cfg:     cfg,
		layout:  cfg.Layout(),
		exec:    exec,
		commits: commits,
		out:     out,
		logger:  logger,
	}
}

func (o *Operations) Layout() Layout {
	return o.layout
}

func (o *Operations) Host(t Target) *remote.Host {
	return remote.NewHost(t.Host, o.exec)
}

func (o *Operations) templates(host *remote.Host, t Target) TemplateSource {
	if o.cfg.Templates != "" {
		return DirSource{Dir: o.cfg.Templates}
	}
	return CheckoutSource{Host: host, Layout: o.layout, Target: t}
}

type step struct {
	name string
	kind error
	run  func(ctx context.Context) error
}

func (o *Operations) runSteps(ctx context.Context, t Target, steps []step) error {
	log := o.logger.With(zap.String("host", t.Host))
	for _, s := range steps {
		log.Info("step started", zap.String("step", s.name))
		fmt.Fprintf(o.out, "[%s] %s\n", t.Host, s.name)
		if err := s.run(ctx); err != nil {
			log.Error("step failed", zap.String("step", s.name), zap.Error(err))
			return stepErr(s.kind, t.Host, s.name, err)
		}
	}
	return nil
}

// Provision renders the nginx site and the worker unit for t and installs
// them on the host.
func (o *Operations) Provision(ctx context.Context, t Target) error {
	host := o.Host(t)
	src := o.templates(host, t)
	return o.runSteps(ctx, t, []step{
		{"install nginx site", ErrProvision, func(ctx context.Context) error {
			return installNginxSite(ctx, host, o.layout, t, src)
		}},
		{"install worker unit", ErrProvision, func(ctx context.Context) error {
			return installUnit(ctx, host, o.layout, t, src)
		}},
		{"reload systemd", ErrProvision, func(ctx context.Context) error {
			return systemctl(ctx, host, "daemon-reload")
		}},
	})
}

// Deploy pins the remote checkout to the local HEAD and brings runtime, env
// file, static files and schema up to date.
func (o *Operations) Deploy(ctx context.Context, t Target) error {
	commit, err := o.commits.HeadCommit(ctx)
	if err != nil {
		return stepErr(ErrConfiguration, t.Host, "resolve local commit", err)
	}
	o.logger.Info("deploying commit", zap.String("host", t.Host), zap.String("commit", commit))

	host := o.Host(t)
	return o.runSteps(ctx, t, []step{
		{"sync source", ErrSourceSync, func(ctx context.Context) error {
			return syncSource(ctx, host, o.layout, t, o.cfg.RepoURL, commit)
		}},
		{"update virtualenv", ErrProvision, func(ctx context.Context) error {
			return ensureRuntime(ctx, host, o.layout, t, o.cfg.Python)
		}},
		{"update env file", ErrProvision, func(ctx context.Context) error {
			return ensureEnv(ctx, host, o.layout, t)
		}},
		{"collect static files", ErrMaintenance, func(ctx context.Context) error {
			return collectStatic(ctx, host, o.layout, t)
		}},
		{"migrate database", ErrMaintenance, func(ctx context.Context) error {
			return applyMigrations(ctx, host, o.layout, t)
		}},
	})
}

// NewSwitchover prepares switching the host pair to t.
func (o *Operations) NewSwitchover(t Target, out io.Writer) *Switchover {
	return NewSwitchover(o.Host(t), o.layout, t, out, o.logger)
}

// Switch makes t the only enabled site of its pair.
func (o *Operations) Switch(ctx context.Context, t Target) error {
	host := o.Host(t)
	state, err := ObserveSiteState(ctx, host, o.layout, t)
	if err != nil {
		return stepErr(ErrSwitch, t.Host, "observe site state", err)
	}
	o.logger.Info("switching site", zap.String("host", t.Host), zap.Stringer("current", state))

	if err := o.NewSwitchover(t, o.out).Run(ctx); err != nil {
		return err
	}
	return o.Verify(ctx, t)
}

// Verify checks t answers over HTTP when a Verifier is configured.
func (o *Operations) Verify(ctx context.Context, t Target) error {
	if o.Verifier == nil {
		return nil
	}
	if err := o.Verifier.Check(ctx, t); err != nil {
		return stepErr(ErrSwitch, t.Host, "verify site", err)
	}
	fmt.Fprintf(o.out, "[%s] site answers\n", t.Host)
	return nil
}
