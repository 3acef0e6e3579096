package sitectl

import (
	"context"

	"github.com/example/sitectl/internal/remote"
)

const venvPython = "./virtualenv/bin/python"

func manage(ctx context.Context, host *remote.Host, layout Layout, t Target, subcommand string) error {
	_, err := host.Run(ctx, remote.Cmd(venvPython, "manage.py", subcommand, "--noinput").In(layout.SiteDir(t)))
	return err
}

func collectStatic(ctx context.Context, host *remote.Host, layout Layout, t Target) error {
	return manage(ctx, host, layout, t, "collectstatic")
}

func applyMigrations(ctx context.Context, host *remote.Host, layout Layout, t Target) error {
	return manage(ctx, host, layout, t, "migrate")
}
