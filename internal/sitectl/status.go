package sitectl

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// HostStatus is what status reports for one target.
type HostStatus struct {
	Host    string       `yaml:"host"`
	State   string       `yaml:"state"`
	Commit  string       `yaml:"commit,omitempty"`
	Proxy   bool         `yaml:"proxy_active"`
	Workers []UnitStatus `yaml:"workers"`
}

type UnitStatus struct {
	Unit    string `yaml:"unit"`
	Enabled bool   `yaml:"site_enabled"`
	Active  bool   `yaml:"active"`
}

// Status inspects the host pair of t without changing it.
func (o *Operations) Status(ctx context.Context, t Target) (HostStatus, error) {
	host := o.Host(t)
	fail := func(err error) (HostStatus, error) {
		return HostStatus{}, stepErr(nil, t.Host, "status", err)
	}

	state, err := ObserveSiteState(ctx, host, o.layout, t)
	if err != nil {
		return fail(err)
	}
	commit, err := deployedCommit(ctx, host, o.layout, t)
	if err != nil {
		return fail(err)
	}
	proxy, err := unitActive(ctx, host, proxyService)
	if err != nil {
		return fail(err)
	}

	st := HostStatus{Host: t.Host, State: state.String(), Commit: commit, Proxy: proxy}
	for _, site := range []Target{t, t.Counterpart()} {
		unit := o.layout.Unit(site)
		active, err := unitActive(ctx, host, unit)
		if err != nil {
			return fail(err)
		}
		enabled, err := nginxSiteEnabled(ctx, host, o.layout, site)
		if err != nil {
			return fail(err)
		}
		st.Workers = append(st.Workers, UnitStatus{Unit: unit, Enabled: enabled, Active: active})
	}
	return st, nil
}

// WriteStatus renders statuses as "table" or "yaml".
func WriteStatus(w io.Writer, statuses []HostStatus, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(statuses); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOST\tSTATE\tCOMMIT\tNGINX\tUNIT\tSITE\tWORKER")
		for _, st := range statuses {
			commit := st.Commit
			if len(commit) > 12 {
				commit = commit[:12]
			}
			if commit == "" {
				commit = "-"
			}
			for _, u := range st.Workers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					st.Host, st.State, commit, onOff(st.Proxy, "active", "inactive"),
					u.Unit, onOff(u.Enabled, "enabled", "disabled"), onOff(u.Active, "active", "inactive"))
			}
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}
