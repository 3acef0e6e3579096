package sitectl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote"
)

// SwitchUI runs an interactive switchover for a single target.
type SwitchUI func(ctx context.Context, ops *Operations, t Target) error

// Option customises the root command.
type Option func(*app)

// WithSwitchUI installs the handler behind switch --interactive.
func WithSwitchUI(ui SwitchUI) Option {
	return func(a *app) { a.switchUI = ui }
}

// WithExecutor replaces the SSH executor.
func WithExecutor(exec remote.Executor) Option {
	return func(a *app) { a.exec = exec }
}

// WithLogger replaces the logger built from --log-level and --log-file.
func WithLogger(logger *zap.Logger) Option {
	return func(a *app) { a.logger = logger }
}

type app struct {
	configFile string
	envFile    string
	hosts      string
	templates  string
	logLevel   string
	logFile    string

	cfg      Config
	targets  []Target
	logger   *zap.Logger
	exec     remote.Executor
	closer   func() error
	switchUI SwitchUI
}

func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "sitectl",
		Short: "Provision, deploy and switch the prod/staging sites sharing one host",
		Long: `sitectl runs the deploy runbook over SSH.

Configuration comes from REPO_URL, DEPLOY_USER, DEPLOY_KEYFILE and
DEPLOY_HOST (comma separated), optionally loaded from .env.deploy, with
SITECTL_* overrides and an optional sitectl.yaml.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default ./sitectl.yaml when present)")
	f.StringVar(&a.envFile, "env-file", DefaultEnvFile, "dotenv file loaded before reading the environment")
	f.StringVar(&a.hosts, "hosts", "", "comma separated hosts, overrides DEPLOY_HOST")
	f.StringVar(&a.templates, "templates", "", "local templates directory (default: deploy_tools/ in the remote checkout)")
	f.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		a.provisionCommand(),
		a.deployCommand(),
		a.switchCommand(),
		a.statusCommand(),
		a.doctorCommand(),
	)
	// Post-run hooks are skipped when RunE fails, so release the SSH
	// connections from the commands themselves.
	for _, c := range root.Commands() {
		c.Annotations = map[string]string{runbookAnnotation: "true"}
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			return errors.Join(run(cmd, args), a.teardown())
		}
	}
	return root
}

// runbookAnnotation marks the commands that need configuration and a
// transport. help, completion and __complete run without either.
const runbookAnnotation = "sitectl/runbook"

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[runbookAnnotation] == "" {
		return nil
	}
	cfg, err := LoadConfig(a.configFile, a.envFile)
	if err != nil {
		return err
	}
	if a.hosts != "" {
		cfg.Hosts = splitList(a.hosts)
	}
	if a.templates != "" {
		cfg.Templates = a.templates
	}
	if cfg.Templates == "" && (cmd.Name() == "provision" || cmd.Name() == "doctor") {
		cfg.Templates = FindTemplatesDir()
	}

	targets, err := cfg.Targets()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.targets = targets

	if a.logger == nil {
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive && a.logFile == "" {
			a.logger = zap.NewNop()
		} else if a.logger, err = NewLogger(a.logLevel, a.logFile); err != nil {
			return err
		}
	}

	if a.exec == nil {
		ssh, err := remote.NewSSHExecutor(cfg.Identity(), a.logger)
		if err != nil {
			return configErr(err)
		}
		a.exec = ssh
		a.closer = ssh.Close
	}
	a.logger.Debug("configuration loaded",
		zap.Strings("hosts", cfg.Hosts),
		zap.String("user", cfg.User),
		zap.String("app", cfg.App),
	)
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.closer != nil {
		err = a.closer()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func (a *app) operations(cmd *cobra.Command, commits CommitResolver) *Operations {
	return NewOperations(a.cfg, a.exec, commits, cmd.OutOrStdout(), a.logger)
}

func (a *app) provisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Render and install the nginx site and worker unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := a.operations(cmd, nil)
			return RunEach(cmd.Context(), a.targets, ops.Provision, a.logger)
		},
	}
}

func (a *app) deployCommand() *cobra.Command {
	var commit string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the locally checked out commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var commits CommitResolver = GitResolver{
				Dir:    a.cfg.LocalRepo,
				Local:  remote.LocalExecutor{},
				Logger: a.logger,
			}
			if commit != "" {
				commits = FixedCommit(commit)
			}
			ops := a.operations(cmd, commits)
			return RunEach(cmd.Context(), a.targets, ops.Deploy, a.logger)
		},
	}
	cmd.Flags().StringVar(&commit, "commit", "", "deploy this full commit id instead of the local HEAD")
	return cmd
}

func (a *app) switchCommand() *cobra.Command {
	var (
		interactive   bool
		verify        bool
		verifyTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Make each host the served site of its prod/staging pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := a.operations(cmd, nil)
			if verify {
				ops.Verifier = NewVerifier(verifyTimeout)
			}
			if !interactive {
				return RunEach(cmd.Context(), a.targets, ops.Switch, a.logger)
			}
			if a.switchUI == nil {
				return errors.New("interactive switch is not available in this build")
			}
			if len(a.targets) != 1 {
				return configErr(fmt.Errorf("--interactive needs exactly one host, got %d", len(a.targets)))
			}
			return a.switchUI(cmd.Context(), ops, a.targets[0])
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "confirm and follow the switch in a terminal UI")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the site answers over HTTP afterwards")
	cmd.Flags().DurationVar(&verifyTimeout, "verify-timeout", 30*time.Second, "HTTP timeout for --verify")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which site each host serves and what is deployed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := a.operations(cmd, nil)
			var statuses []HostStatus
			err := RunEach(cmd.Context(), a.targets, func(ctx context.Context, t Target) error {
				st, err := ops.Status(ctx, t)
				if err == nil {
					statuses = append(statuses, st)
				}
				return err
			}, a.logger)
			if werr := WriteStatus(cmd.OutOrStdout(), statuses, output); werr != nil {
				return errors.Join(err, werr)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func (a *app) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run pre-flight checks against each host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := a.operations(cmd, nil)
			for _, t := range a.targets {
				WriteChecks(cmd.OutOrStdout(), t.Host, ops.RunChecks(cmd.Context(), t))
			}
			return nil
		},
	}
}
