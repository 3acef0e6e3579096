package sitectl

import (
	"fmt"
	"strings"
)

// SiteKind is one of the two site variants sharing a host.
type SiteKind int

const (
	KindProd SiteKind = iota + 1
	KindStaging
)

func (k SiteKind) String() string {
	switch k {
	case KindProd:
		return "prod"
	case KindStaging:
		return "staging"
	}
	return fmt.Sprintf("SiteKind(%d)", int(k))
}

// Other returns the counterpart kind.
func (k SiteKind) Other() SiteKind {
	if k == KindProd {
		return KindStaging
	}
	return KindProd
}

// Target is a validated deploy host.
type Target struct {
	Host string
	Kind SiteKind
}

// ParseTarget classifies host by its naming prefix.
func ParseTarget(host string) (Target, error) {
	host = strings.TrimSpace(host)
	switch {
	case strings.HasPrefix(host, KindProd.String()):
		return Target{Host: host, Kind: KindProd}, nil
	case strings.HasPrefix(host, KindStaging.String()):
		return Target{Host: host, Kind: KindStaging}, nil
	}
	return Target{}, &StepError{
		Host: host,
		Step: "parse target",
		Kind: ErrConfiguration,
		Err:  fmt.Errorf("host must start with %q or %q", KindProd, KindStaging),
	}
}

// ParseTargets parses every host, failing on the first invalid one.
func ParseTargets(hosts []string) ([]Target, error) {
	targets := make([]Target, 0, len(hosts))
	for _, h := range hosts {
		t, err := ParseTarget(h)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// Counterpart is the other site on the same machine: the first occurrence of
// the kind token swapped for the other kind.
func (t Target) Counterpart() Target {
	other := t.Kind.Other()
	return Target{
		Host: strings.Replace(t.Host, t.Kind.String(), other.String(), 1),
		Kind: other,
	}
}

func (t Target) String() string {
	return t.Host
}
