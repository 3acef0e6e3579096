package sitectl

import (
	"context"
	"fmt"

	"github.com/example/sitectl/internal/remote"
)

func installNginxSite(ctx context.Context, host *remote.Host, layout Layout, t Target, src TemplateSource) error {
	text, err := renderTemplate(ctx, src, nginxTemplate, Substitutions{Domain: t.Host, User: layout.User})
	if err != nil {
		return err
	}
	if err := host.WriteFile(ctx, layout.NginxAvailable(t), text, true); err != nil {
		return fmt.Errorf("install nginx site: %w", err)
	}
	return nil
}

// relinkNginxSite points sites-enabled at enable's config and drops the
// counterpart's link when present.
func relinkNginxSite(ctx context.Context, host *remote.Host, layout Layout, enable, disable Target) error {
	link := remote.Cmd("ln", "-sf", layout.NginxAvailable(enable), layout.NginxEnabled(enable)).AsRoot()
	if _, err := host.Run(ctx, link); err != nil {
		return err
	}
	stale := layout.NginxEnabled(disable)
	present, err := enabledEntry(ctx, host, stale)
	if err != nil {
		return err
	}
	if present {
		if _, err := host.Run(ctx, remote.Cmd("rm", stale).AsRoot()); err != nil {
			return err
		}
	}
	return nil
}

func nginxSiteEnabled(ctx context.Context, host *remote.Host, layout Layout, t Target) (bool, error) {
	return enabledEntry(ctx, host, layout.NginxEnabled(t))
}

// enabledEntry reports whether p is in sites-enabled at all. nginx serves a
// copied file as readily as a symlink, and a dangling link is still listed.
func enabledEntry(ctx context.Context, host *remote.Host, p string) (bool, error) {
	link, err := host.IsSymlink(ctx, p)
	if err != nil || link {
		return link, err
	}
	return host.PathExists(ctx, p)
}
