// Package remote runs commands on deploy targets under a fixed identity and
// offers the small set of file helpers the runbook needs on top of them.
package remote

import (
	"context"
	"fmt"
	"strings"
)

// Result holds the captured output of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a command on a host.
type Executor interface {
	Run(ctx context.Context, host string, cmd Command) (*Result, error)
}

// Error reports a command that could not be run or exited non-zero.
// ExitCode is -1 when the command never produced an exit status
// (dial, auth or session failures).
type Error struct {
	Host     string
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %q", e.Host, e.Command)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, ": %s", msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
