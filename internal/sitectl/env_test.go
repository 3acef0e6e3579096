package sitectl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prodEnvFile = "/home/deployer/sites/superlists-prod.example.com/.env"

func TestEnsureEnvCreatesFile(t *testing.T) {
	ops, fake, _ := newTestOps(t, testConfig(), nil)
	ctx := context.Background()

	require.NoError(t, ensureEnv(ctx, ops.Host(prod), ops.Layout(), prod))

	lines := strings.Split(strings.TrimSuffix(fake.Files[prodEnvFile], "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "DJANGO_DEBUG_FALSE=y", lines[0])
	assert.Equal(t, "SITENAME=prod.example.com", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "DJANGO_SECRET_KEY="))
	assert.Len(t, strings.TrimPrefix(lines[2], "DJANGO_SECRET_KEY="), secretLength)
}

func TestEnsureEnvKeepsSecret(t *testing.T) {
	ops, fake, _ := newTestOps(t, testConfig(), nil)
	ctx := context.Background()

	require.NoError(t, ensureEnv(ctx, ops.Host(prod), ops.Layout(), prod))
	first := fake.Files[prodEnvFile]

	require.NoError(t, ensureEnv(ctx, ops.Host(prod), ops.Layout(), prod))
	assert.Equal(t, first, fake.Files[prodEnvFile])
	assert.Equal(t, 1, strings.Count(fake.Files[prodEnvFile], "DJANGO_SECRET_KEY"))
}

func TestEnsureEnvPreservesExistingSecret(t *testing.T) {
	ops, fake, _ := newTestOps(t, testConfig(), nil)
	fake.SetFile(prodEnvFile, "DJANGO_SECRET_KEY=handpicked")

	require.NoError(t, ensureEnv(context.Background(), ops.Host(prod), ops.Layout(), prod))

	content := fake.Files[prodEnvFile]
	assert.Equal(t, "DJANGO_SECRET_KEY=handpicked\nDJANGO_DEBUG_FALSE=y\nSITENAME=prod.example.com\n", content)
}
