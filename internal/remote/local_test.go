package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExecutorCapturesOutput(t *testing.T) {
	res, err := LocalExecutor{}.Run(context.Background(), "", Cmd("echo", "hello", "world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestLocalExecutorStdinAndDir(t *testing.T) {
	dir := t.TempDir()
	_, err := LocalExecutor{}.Run(context.Background(), "", Cmd("tee", "out.txt").In(dir).WithInput("payload\n"))
	require.NoError(t, err)

	res, err := LocalExecutor{}.Run(context.Background(), "", Cmd("cat", "out.txt").In(dir))
	require.NoError(t, err)
	assert.Equal(t, "payload\n", res.Stdout)
}

func TestLocalExecutorNonZeroExit(t *testing.T) {
	_, err := LocalExecutor{}.Run(context.Background(), "", Cmd("sh", "-c", "echo boom >&2; exit 3"))
	require.Error(t, err)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, LocalHost, rerr.Host)
	assert.Equal(t, 3, rerr.ExitCode)
	assert.Contains(t, rerr.Error(), "boom")
}

func TestLocalExecutorMissingProgram(t *testing.T) {
	_, err := LocalExecutor{}.Run(context.Background(), "", Cmd("sitectl-no-such-binary"))
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, -1, rerr.ExitCode)
}
