package sitectl

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/example/sitectl/internal/remote"
)

// CheckResult is the outcome of one pre-flight check.
type CheckResult struct {
	Name string
	OK   bool
	Err  error
}

// RunChecks probes t's host for everything the runbook relies on. Checks
// never change the host.
func (o *Operations) RunChecks(ctx context.Context, t Target) []CheckResult {
	host := o.Host(t)
	checks := []struct {
		name string
		fn   func() error
	}{
		{"passwordless sudo", func() error {
			_, err := host.Run(ctx, remote.Cmd("true").AsRoot())
			return err
		}},
		{"nginx installed", func() error { return commandAvailable(ctx, host, "nginx") }},
		{"systemctl available", func() error { return commandAvailable(ctx, host, "systemctl") }},
		{"git installed", func() error { return commandAvailable(ctx, host, "git") }},
		{o.cfg.Python + " installed", func() error { return commandAvailable(ctx, host, o.cfg.Python) }},
		{"nginx sites directories", func() error {
			for _, dir := range []string{nginxAvailableDir, nginxEnabledDir} {
				if err := requirePath(ctx, host, dir); err != nil {
					return err
				}
			}
			return nil
		}},
		{"templates available", func() error { return o.templatesAvailable(ctx, host, t) }},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		err := check.fn()
		results = append(results, CheckResult{Name: check.name, OK: err == nil, Err: err})
	}
	return results
}

func (o *Operations) templatesAvailable(ctx context.Context, host *remote.Host, t Target) error {
	for _, name := range []string{nginxTemplate, unitTemplate} {
		if o.cfg.Templates != "" {
			if _, err := (DirSource{Dir: o.cfg.Templates}).Load(ctx, name); err != nil {
				return fmt.Errorf("%s: %w", filepath.Join(o.cfg.Templates, name), err)
			}
			continue
		}
		p := path.Join(o.layout.SiteDir(t), checkoutTemplatesDir, name)
		if err := requirePath(ctx, host, p); err != nil {
			return fmt.Errorf("%w (deploy first or pass --templates)", err)
		}
	}
	return nil
}

func commandAvailable(ctx context.Context, host *remote.Host, name string) error {
	code, err := host.Probe(ctx, remote.Cmd("sh", "-c", `command -v "$1"`, "sh", name))
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%s not found in PATH", name)
	}
	return nil
}

func requirePath(ctx context.Context, host *remote.Host, p string) error {
	ok, err := host.PathExists(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is missing", p)
	}
	return nil
}

// WriteChecks prints results the way the doctor command reports them.
func WriteChecks(w io.Writer, host string, results []CheckResult) (failed int) {
	fmt.Fprintf(w, "sitectl doctor: %s\n", host)
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "[ OK ] %s\n", r.Name)
			continue
		}
		failed++
		fmt.Fprintf(w, "[WARN] %s: %v\n", r.Name, r.Err)
	}
	return failed
}
