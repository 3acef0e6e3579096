package sitectl

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/sitectl/internal/remote"
)

const (
	defaultApp    = "superlists"
	defaultWorker = "gunicorn"
	defaultPython = "python3.6"

	// DefaultEnvFile is loaded into the process environment when present.
	DefaultEnvFile = ".env.deploy"
)

// Config is read once at startup and passed to every operation.
type Config struct {
	RepoURL string
	User    string
	KeyFile string
	Hosts   []string

	App    string
	Worker string
	Home   string
	Python string

	SSHPort     int
	KnownHosts  string
	DialTimeout time.Duration

	// Templates is a local templates directory. Empty means templates are
	// read from deploy_tools/ in the remote checkout.
	Templates string
	// LocalRepo is the working copy whose HEAD gets deployed.
	LocalRepo string
}

// LoadConfig reads configuration from the environment (REPO_URL,
// DEPLOY_USER, DEPLOY_KEYFILE, DEPLOY_HOST and SITECTL_* overrides), an
// optional dotenv file and an optional sitectl.yaml.
func LoadConfig(configFile, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, configErr(fmt.Errorf("load %s: %w", envFile, err))
		}
	}

	v := viper.New()
	v.SetConfigName("sitectl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	v.SetEnvPrefix("SITECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"repo_url": "REPO_URL",
		"user":     "DEPLOY_USER",
		"key_file": "DEPLOY_KEYFILE",
		"hosts":    "DEPLOY_HOST",
	} {
		if err := v.BindEnv(key, "SITECTL_"+strings.ToUpper(key), env); err != nil {
			return Config{}, configErr(err)
		}
	}

	v.SetDefault("app", defaultApp)
	v.SetDefault("worker", defaultWorker)
	v.SetDefault("python", defaultPython)
	v.SetDefault("ssh.port", 22)
	v.SetDefault("ssh.dial_timeout", "0s")
	v.SetDefault("local_repo", ".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, configErr(fmt.Errorf("read config: %w", err))
		}
	}

	hosts := splitList(v.GetString("hosts"))
	if len(hosts) == 0 {
		hosts = v.GetStringSlice("hosts")
	}

	cfg := Config{
		RepoURL:     strings.TrimSpace(v.GetString("repo_url")),
		User:        strings.TrimSpace(v.GetString("user")),
		KeyFile:     strings.TrimSpace(v.GetString("key_file")),
		Hosts:       hosts,
		App:         v.GetString("app"),
		Worker:      v.GetString("worker"),
		Home:        v.GetString("home"),
		Python:      v.GetString("python"),
		SSHPort:     v.GetInt("ssh.port"),
		KnownHosts:  v.GetString("ssh.known_hosts"),
		DialTimeout: v.GetDuration("ssh.dial_timeout"),
		Templates:   v.GetString("templates"),
		LocalRepo:   v.GetString("local_repo"),
	}
	return cfg, nil
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"REPO_URL", c.RepoURL},
		{"DEPLOY_USER", c.User},
		{"DEPLOY_KEYFILE", c.KeyFile},
	}
	for _, r := range required {
		if r.value == "" {
			return configErr(fmt.Errorf("%s is not set", r.env))
		}
	}
	if len(c.Hosts) == 0 {
		return configErr(errors.New("DEPLOY_HOST lists no hosts"))
	}
	if c.App == "" || c.Worker == "" {
		return configErr(errors.New("app and worker names must not be empty"))
	}
	return nil
}

// Targets validates the configuration and parses every host.
func (c Config) Targets() ([]Target, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return ParseTargets(c.Hosts)
}

func (c Config) Layout() Layout {
	return Layout{App: c.App, User: c.User, Home: c.Home, Worker: c.Worker}
}

func (c Config) Identity() remote.Identity {
	return remote.Identity{
		User:           c.User,
		KeyFile:        c.KeyFile,
		KnownHostsFile: c.KnownHosts,
		Port:           c.SSHPort,
		DialTimeout:    c.DialTimeout,
	}
}

func configErr(err error) error {
	return &StepError{Step: "load config", Kind: ErrConfiguration, Err: err}
}
