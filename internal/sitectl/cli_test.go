package sitectl

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote"
	"github.com/example/sitectl/internal/remote/remotetest"
)

func execute(t *testing.T, fake *remotetest.Fake, args []string, opts ...Option) (string, error) {
	t.Helper()
	t.Setenv("REPO_URL", "https://example.com/superlists.git")
	t.Setenv("DEPLOY_USER", "deployer")
	t.Setenv("DEPLOY_KEYFILE", "/keys/deploy")
	t.Setenv("DEPLOY_HOST", "prod.example.com")

	opts = append([]Option{WithExecutor(fake), WithLogger(zap.NewNop())}, opts...)
	root := NewRootCommand(opts...)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", ""))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLISwitch(t *testing.T) {
	fake := remotetest.New()
	fake.Link(prodEnabled, prodAvailable)

	out, err := execute(t, fake, []string{"switch", "--hosts", stagingHost})
	require.NoError(t, err)
	assert.Contains(t, out, "Site now is available at staging.example.com")
	assert.Equal(t, map[string]string{stagingEnabled: stagingAvailable}, fake.Links)
}

func TestCLIDeployWithCommit(t *testing.T) {
	fake := remotetest.New()
	scriptGit(fake, testCommit)

	out, err := execute(t, fake, []string{"deploy", "--commit", testCommit})
	require.NoError(t, err)
	assert.Contains(t, out, "[prod.example.com] sync source")
	assert.Contains(t, fake.Mutations(), "git reset --hard "+testCommit)
	for _, c := range fake.Calls() {
		assert.Equal(t, prodHost, c.Host)
	}
}

func TestCLIProvisionWithTemplates(t *testing.T) {
	fake := remotetest.New()
	dir := writeTemplates(t)

	_, err := execute(t, fake, []string{"provision", "--templates", dir, "--hosts", "prod.example.com,staging.example.com"})
	require.NoError(t, err)
	assert.Contains(t, fake.Files, "/etc/nginx/sites-available/superlists-prod.example.com")
	assert.Contains(t, fake.Files, "/etc/nginx/sites-available/superlists-staging.example.com")
}

func TestCLIStatusYAML(t *testing.T) {
	fake := remotetest.New()
	fake.Link(prodEnabled, prodAvailable)

	out, err := execute(t, fake, []string{"status", "-o", "yaml"})
	require.NoError(t, err)
	assert.Contains(t, out, "state: prod-enabled")
}

func TestCLIDoctor(t *testing.T) {
	out, err := execute(t, remotetest.New(), []string{"doctor"})
	require.NoError(t, err)
	assert.Contains(t, out, "sitectl doctor: prod.example.com")
	assert.Contains(t, out, "[WARN] nginx sites directories")
}

func TestCLIRejectsBadHost(t *testing.T) {
	fake := remotetest.New()
	_, err := execute(t, fake, []string{"switch", "--hosts", "www.example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Empty(t, fake.Calls())
}

func TestCLIInteractiveSwitch(t *testing.T) {
	var got []Target
	ui := WithSwitchUI(func(_ context.Context, ops *Operations, target Target) error {
		got = append(got, target)
		assert.NotNil(t, ops.Verifier)
		return nil
	})

	_, err := execute(t, remotetest.New(), []string{"switch", "-i", "--verify", "--hosts", stagingHost}, ui)
	require.NoError(t, err)
	assert.Equal(t, []Target{staging}, got)

	_, err = execute(t, remotetest.New(), []string{"switch", "-i", "--hosts", "prod.example.com,staging.example.com"}, ui)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = execute(t, remotetest.New(), []string{"switch", "-i"})
	assert.ErrorContains(t, err, "not available")
}

func TestCLISwitchFailureReportsHost(t *testing.T) {
	fake := remotetest.New()
	fake.FailOn("systemctl stop nginx", 5)

	_, err := execute(t, fake, []string{"switch", "--hosts", "prod.example.com,staging.example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSwitch))

	var rerr *remote.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 5, rerr.ExitCode)
	assert.Contains(t, err.Error(), prodHost)
	assert.Contains(t, err.Error(), stagingHost)
}

func TestCLIProvisionIgnoresProjectTemplates(t *testing.T) {
	dir := t.TempDir()
	projectTemplates(t, dir)
	chdir(t, dir)

	fake := remotetest.New()
	fake.Mkdir(nginxAvailableDir)
	fake.Mkdir(nginxEnabledDir)
	fake.SetFile(prodSiteDir+"/deploy_tools/"+nginxTemplate, "server_name DOMAIN;")
	fake.SetFile(prodSiteDir+"/deploy_tools/"+unitTemplate, "User=USER")

	_, err := execute(t, fake, []string{"provision"})
	require.NoError(t, err)
	assert.Equal(t, "server_name prod.example.com;", fake.Files[prodAvailable])
	assert.Equal(t, "User=deployer", fake.Files["/etc/systemd/system/gunicorn-superlists-prod.example.com.service"])

	out, err := execute(t, fake, []string{"doctor"})
	require.NoError(t, err)
	assert.Contains(t, out, "[ OK ] templates available")
}

func TestCLIHelpAndCompletionNeedNoConfig(t *testing.T) {
	t.Setenv("REPO_URL", "")
	t.Setenv("DEPLOY_KEYFILE", "")

	for _, args := range [][]string{
		{"help", "deploy"},
		{"deploy", "--help"},
		{"completion", "bash"},
		{"__complete", "switch", "--"},
	} {
		root := NewRootCommand(WithLogger(zap.NewNop()))
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		require.NoError(t, root.ExecuteContext(context.Background()), args)
		assert.NotEmpty(t, out.String(), args)
	}

	root := NewRootCommand(WithExecutor(remotetest.New()), WithLogger(zap.NewNop()))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"deploy", "--env-file", ""})
	err := root.ExecuteContext(context.Background())
	assert.True(t, errors.Is(err, ErrConfiguration))
}
