// Package remotetest provides an in-memory Executor that understands the
// handful of file commands the runbook issues and records every call.
package remotetest

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/example/sitectl/internal/remote"
)

// Handler answers a command the fake has no built-in behaviour for. The
// returned string becomes stdout.
type Handler func(f *Fake, cmd remote.Command) (string, error)

type route struct {
	prefix string
	fn     Handler
}

// Call is one recorded invocation.
type Call struct {
	Host    string
	Command remote.Command
}

// Line renders the call as argv joined by spaces, sudo prefix included.
func (c Call) Line() string {
	return strings.Join(c.Command.Argv(), " ")
}

// Fake is a scripted remote.Executor backed by in-memory files.
type Fake struct {
	mu     sync.Mutex
	Files  map[string]string
	Dirs   map[string]bool
	Links  map[string]string
	calls  []Call
	routes []route
	fails  []route
}

var _ remote.Executor = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Files: map[string]string{},
		Dirs:  map[string]bool{},
		Links: map[string]string{},
	}
}

// Handle routes commands whose argv (without sudo) starts with prefix to fn.
func (f *Fake) Handle(prefix string, fn Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route{prefix: prefix, fn: fn})
}

// FailOn makes commands starting with prefix exit with code.
func (f *Fake) FailOn(prefix string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails = append(f.fails, route{prefix: prefix, fn: func(_ *Fake, cmd remote.Command) (string, error) {
		return "", &remote.Error{Command: cmd.String(), ExitCode: code, Stderr: "injected failure"}
	}})
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns the recorded calls rendered with Call.Line.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Line())
	}
	return out
}

// Mutations returns the recorded lines minus read-only probes.
func (f *Fake) Mutations() []string {
	var out []string
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, "test ") || strings.HasPrefix(line, "cat ") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (f *Fake) Run(_ context.Context, host string, cmd remote.Command) (*remote.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Host: host, Command: cmd})
	f.mu.Unlock()

	key := strings.Join(append([]string{cmd.Program}, cmd.Args...), " ")
	if fn := f.match(f.fails, key); fn != nil {
		return f.finish(host, cmd, fn)
	}
	if fn := f.match(f.routes, key); fn != nil {
		return f.finish(host, cmd, fn)
	}
	return f.builtin(host, cmd)
}

// match returns the most recently registered handler for key.
func (f *Fake) match(routes []route, key string) Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(routes) - 1; i >= 0; i-- {
		if strings.HasPrefix(key, routes[i].prefix) {
			return routes[i].fn
		}
	}
	return nil
}

func (f *Fake) finish(host string, cmd remote.Command, fn Handler) (*remote.Result, error) {
	out, err := fn(f, cmd)
	if err == nil {
		return &remote.Result{Stdout: out}, nil
	}
	if rerr, ok := err.(*remote.Error); ok {
		rerr.Host = host
		return &remote.Result{Stdout: out, Stderr: rerr.Stderr, ExitCode: rerr.ExitCode}, rerr
	}
	return nil, &remote.Error{Host: host, Command: cmd.String(), ExitCode: -1, Err: err}
}

func (f *Fake) builtin(host string, cmd remote.Command) (*remote.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	exit := func(code int, stderr string) (*remote.Result, error) {
		return &remote.Result{Stderr: stderr, ExitCode: code},
			&remote.Error{Host: host, Command: cmd.String(), ExitCode: code, Stderr: stderr}
	}
	args := cmd.Args
	resolve := func(p string) string {
		if path.IsAbs(p) || cmd.Dir == "" {
			return path.Clean(p)
		}
		return path.Join(cmd.Dir, p)
	}
	last := func() string {
		if len(args) == 0 {
			return ""
		}
		return resolve(args[len(args)-1])
	}

	switch cmd.Program {
	case "test":
		if len(args) != 2 {
			return exit(2, "test: bad arguments")
		}
		p := resolve(args[1])
		_, isLink := f.Links[p]
		found := isLink
		if args[0] == "-e" {
			_, isFile := f.Files[p]
			found = isFile || f.Dirs[p] || isLink
		}
		if !found {
			return exit(1, "")
		}
	case "cat":
		content, ok := f.Files[last()]
		if !ok {
			return exit(1, "cat: "+last()+": No such file or directory")
		}
		return &remote.Result{Stdout: content}, nil
	case "tee":
		p := last()
		if len(args) > 1 && args[0] == "-a" {
			f.Files[p] += cmd.Stdin
		} else {
			f.Files[p] = cmd.Stdin
		}
		return &remote.Result{Stdout: cmd.Stdin}, nil
	case "mkdir":
		f.Dirs[last()] = true
	case "ln":
		if len(args) < 2 {
			return exit(1, "ln: missing operand")
		}
		f.Links[last()] = resolve(args[len(args)-2])
	case "rm":
		p := last()
		delete(f.Files, p)
		delete(f.Links, p)
	}
	return &remote.Result{}, nil
}

// SetFile stores content at p.
func (f *Fake) SetFile(p, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[p] = content
}

// Mkdir records p as a directory.
func (f *Fake) Mkdir(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Dirs[p] = true
}

// Link records a symlink at p pointing to target.
func (f *Fake) Link(p, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Links[p] = target
}

// Exists reports whether the fake holds a file, directory or link at p.
func (f *Fake) Exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, file := f.Files[p]
	_, link := f.Links[p]
	return file || link || f.Dirs[p]
}
