package sitectl

import (
	"context"
	"path"

	"github.com/example/sitectl/internal/remote"
)

const (
	venvName = "virtualenv"
	venvPip  = "./virtualenv/bin/pip"
)

// ensureRuntime creates the site's virtualenv when its pip is missing and
// always reinstalls the pinned requirements into it.
func ensureRuntime(ctx context.Context, host *remote.Host, layout Layout, t Target, python string) error {
	dir := layout.SiteDir(t)
	present, err := host.PathExists(ctx, path.Join(layout.VirtualenvDir(t), "bin", "pip"))
	if err != nil {
		return err
	}
	if !present {
		if _, err := host.Run(ctx, remote.Cmd(python, "-m", "venv", venvName).In(dir)); err != nil {
			return err
		}
	}
	_, err = host.Run(ctx, remote.Cmd(venvPip, "install", "-r", path.Base(layout.Requirements(t))).In(dir))
	return err
}
