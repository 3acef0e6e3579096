package remote

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// LocalHost is the host name reported for commands run by LocalExecutor.
const LocalHost = "localhost"

// LocalExecutor runs commands on the invoking machine. The host argument is
// only used for error reporting.
type LocalExecutor struct{}

func (LocalExecutor) Run(ctx context.Context, host string, cmd Command) (*Result, error) {
	if host == "" {
		host = LocalHost
	}
	argv := cmd.Argv()
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Dir = cmd.Dir
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &Error{Host: host, Command: cmd.String(), ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	res.ExitCode = -1
	return res, &Error{Host: host, Command: cmd.String(), ExitCode: -1, Stderr: res.Stderr, Err: err}
}
