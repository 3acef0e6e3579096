package sitectl

import (
	"context"
	"fmt"

	"github.com/example/sitectl/internal/remote"
)

func installUnit(ctx context.Context, host *remote.Host, layout Layout, t Target, src TemplateSource) error {
	text, err := renderTemplate(ctx, src, unitTemplate, Substitutions{Domain: t.Host, User: layout.User})
	if err != nil {
		return err
	}
	if err := host.WriteFile(ctx, layout.UnitFile(t), text, true); err != nil {
		return fmt.Errorf("install unit %s: %w", layout.Unit(t), err)
	}
	return nil
}

func systemctl(ctx context.Context, host *remote.Host, args ...string) error {
	_, err := host.Run(ctx, remote.Cmd("systemctl", args...).AsRoot())
	return err
}

func unitActive(ctx context.Context, host *remote.Host, unit string) (bool, error) {
	code, err := host.Probe(ctx, remote.Cmd("systemctl", "is-active", "--quiet", unit))
	if err != nil {
		return false, err
	}
	return code == 0, nil
}
