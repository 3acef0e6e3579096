package sitectl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDeployEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REPO_URL", "https://example.com/superlists.git")
	t.Setenv("DEPLOY_USER", "deployer")
	t.Setenv("DEPLOY_KEYFILE", "/keys/deploy")
	t.Setenv("DEPLOY_HOST", "prod.example.com, staging.example.com")
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	setDeployEnv(t)

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/superlists.git", cfg.RepoURL)
	assert.Equal(t, "deployer", cfg.User)
	assert.Equal(t, "/keys/deploy", cfg.KeyFile)
	assert.Equal(t, []string{prodHost, stagingHost}, cfg.Hosts)
	assert.Equal(t, defaultApp, cfg.App)
	assert.Equal(t, defaultWorker, cfg.Worker)
	assert.Equal(t, defaultPython, cfg.Python)
	assert.Equal(t, 22, cfg.SSHPort)

	targets, err := cfg.Targets()
	require.NoError(t, err)
	assert.Equal(t, []Target{prod, staging}, targets)
	assert.Equal(t, "/home/deployer/sites/superlists-prod.example.com", cfg.Layout().SiteDir(prod))
}

func TestLoadConfigPrefixedOverride(t *testing.T) {
	setDeployEnv(t)
	t.Setenv("SITECTL_USER", "ops")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.User)
}

func TestLoadConfigTemplatesFromEnvironment(t *testing.T) {
	setDeployEnv(t)
	t.Setenv("SITECTL_TEMPLATES", "/opt/sitectl/templates")

	cfg, err := LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/sitectl/templates", cfg.Templates)
}

func TestLoadConfigFile(t *testing.T) {
	setDeployEnv(t)
	file := filepath.Join(t.TempDir(), "sitectl.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`app: todo
worker: uwsgi
home: /srv/deploy
ssh:
  port: 2222
  dial_timeout: 5s
`), 0o644))

	cfg, err := LoadConfig(file, "")
	require.NoError(t, err)
	assert.Equal(t, "todo", cfg.App)
	assert.Equal(t, 2222, cfg.SSHPort)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "uwsgi-todo-prod.example.com", cfg.Layout().Unit(prod))
	assert.Equal(t, "/srv/deploy/sites/todo-prod.example.com/.env", cfg.Layout().EnvFile(prod))

	id := cfg.Identity()
	assert.Equal(t, 2222, id.Port)
	assert.Equal(t, "deployer", id.User)
}

func TestLoadConfigMissingFile(t *testing.T) {
	setDeployEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestLoadConfigDotenv(t *testing.T) {
	setDeployEnv(t)
	unsetEnv(t, "DEPLOY_KEYFILE")
	envFile := filepath.Join(t.TempDir(), ".env.deploy")
	require.NoError(t, os.WriteFile(envFile, []byte("DEPLOY_KEYFILE=/keys/from-dotenv\nDEPLOY_USER=ignored\n"), 0o600))

	cfg, err := LoadConfig("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "/keys/from-dotenv", cfg.KeyFile)
	assert.Equal(t, "deployer", cfg.User, "the process environment wins over the dotenv file")

	_, err = LoadConfig("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"repo", func(c *Config) { c.RepoURL = "" }, "REPO_URL is not set"},
		{"user", func(c *Config) { c.User = "" }, "DEPLOY_USER is not set"},
		{"key", func(c *Config) { c.KeyFile = "" }, "DEPLOY_KEYFILE is not set"},
		{"hosts", func(c *Config) { c.Hosts = nil }, "DEPLOY_HOST lists no hosts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, testConfig().Validate())
}

func TestTargetsRejectsBadHost(t *testing.T) {
	cfg := testConfig()
	cfg.Hosts = []string{"www.example.com"}
	_, err := cfg.Targets()
	assert.True(t, errors.Is(err, ErrConfiguration))
}
