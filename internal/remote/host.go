package remote

import (
	"context"
	"errors"
	"strings"
)

// Host binds an executor to a single target host.
type Host struct {
	Name string
	exec Executor
}

func NewHost(name string, exec Executor) *Host {
	return &Host{Name: name, exec: exec}
}

// Run executes cmd and returns its stdout.
func (h *Host) Run(ctx context.Context, cmd Command) (string, error) {
	res, err := h.exec.Run(ctx, h.Name, cmd)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Probe executes cmd and reports its exit code. A non-zero exit is not an
// error; only a command that never produced an exit status is.
func (h *Host) Probe(ctx context.Context, cmd Command) (int, error) {
	res, err := h.exec.Run(ctx, h.Name, cmd)
	if err == nil {
		return 0, nil
	}
	var rerr *Error
	if errors.As(err, &rerr) && rerr.ExitCode > 0 {
		return rerr.ExitCode, nil
	}
	if res != nil && res.ExitCode > 0 {
		return res.ExitCode, nil
	}
	return -1, err
}

// PathExists reports whether path exists on the host.
func (h *Host) PathExists(ctx context.Context, path string) (bool, error) {
	return h.test(ctx, "-e", path)
}

// IsSymlink reports whether path is a symlink, dangling or not.
func (h *Host) IsSymlink(ctx context.Context, path string) (bool, error) {
	return h.test(ctx, "-L", path)
}

func (h *Host) test(ctx context.Context, flag, path string) (bool, error) {
	code, err := h.Probe(ctx, Cmd("test", flag, path))
	switch {
	case err != nil:
		return false, err
	case code == 0:
		return true, nil
	case code == 1:
		return false, nil
	}
	return false, &Error{Host: h.Name, Command: Cmd("test", flag, path).String(), ExitCode: code}
}

// ReadFile returns the content of path.
func (h *Host) ReadFile(ctx context.Context, path string) (string, error) {
	return h.Run(ctx, Cmd("cat", path))
}

// WriteFile replaces path with text, as root when sudo is set.
func (h *Host) WriteFile(ctx context.Context, path, text string, sudo bool) error {
	cmd := Cmd("tee", path).WithInput(text)
	if sudo {
		cmd = cmd.AsRoot()
	}
	_, err := h.Run(ctx, cmd)
	return err
}

// AppendLineIfMissing appends line to path unless the file already holds an
// identical line. The file is read before appending, so the check and the
// write are not atomic.
func (h *Host) AppendLineIfMissing(ctx context.Context, path, line string) error {
	var current string
	exists, err := h.PathExists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		if current, err = h.ReadFile(ctx, path); err != nil {
			return err
		}
		if HasLine(current, line) {
			return nil
		}
	}

	text := line + "\n"
	if current != "" && !strings.HasSuffix(current, "\n") {
		text = "\n" + text
	}
	_, err = h.Run(ctx, Cmd("tee", "-a", path).WithInput(text))
	return err
}

// HasLine reports whether content contains line as a whole line.
func HasLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimRight(l, "\r") == line {
			return true
		}
	}
	return false
}
