package sitectl

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/example/sitectl/internal/remote"
)

// syncSource brings the remote checkout for t to commit: clone when there is
// no repository yet, fetch otherwise, then hard reset. Local changes on the
// host are discarded.
func syncSource(ctx context.Context, host *remote.Host, layout Layout, t Target, repoURL, commit string) error {
	dir := layout.SiteDir(t)
	if _, err := host.Run(ctx, remote.Cmd("mkdir", "-p", dir)); err != nil {
		return err
	}

	cloned, err := host.PathExists(ctx, path.Join(dir, ".git"))
	if err != nil {
		return err
	}
	if cloned {
		_, err = host.Run(ctx, remote.Cmd("git", "fetch").In(dir))
	} else {
		_, err = host.Run(ctx, remote.Cmd("git", "clone", repoURL, ".").In(dir))
	}
	if err != nil {
		return err
	}

	if _, err := host.Run(ctx, remote.Cmd("git", "reset", "--hard", commit).In(dir)); err != nil {
		return err
	}

	out, err := host.Run(ctx, remote.Cmd("git", "rev-parse", "HEAD").In(dir))
	if err != nil {
		return err
	}
	if got := strings.TrimSpace(out); got != commit {
		return fmt.Errorf("checkout is at %s after reset, want %s", got, commit)
	}
	return nil
}

// deployedCommit returns the checkout's HEAD, or "" when nothing is cloned.
func deployedCommit(ctx context.Context, host *remote.Host, layout Layout, t Target) (string, error) {
	dir := layout.SiteDir(t)
	cloned, err := host.PathExists(ctx, path.Join(dir, ".git"))
	if err != nil || !cloned {
		return "", err
	}
	out, err := host.Run(ctx, remote.Cmd("git", "rev-parse", "HEAD").In(dir))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
