package sitectl

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote"
)

var commitPattern = regexp.MustCompile(`^([0-9a-f]{40}|[0-9a-f]{64})$`)

// CommitResolver yields the commit a deploy pins the remote checkout to.
type CommitResolver interface {
	HeadCommit(ctx context.Context) (string, error)
}

// GitResolver reads HEAD of the local repository containing Dir. It falls back
// to the git binary when go-git cannot read the repository.
type GitResolver struct {
	Dir    string
	Local  remote.Executor
	Logger *zap.Logger
}

func (r GitResolver) HeadCommit(ctx context.Context) (string, error) {
	commit, err := r.openHead()
	if err != nil {
		if r.Local == nil {
			return "", err
		}
		if r.Logger != nil {
			r.Logger.Debug("go-git could not read HEAD, using git binary", zap.Error(err))
		}
		res, lerr := r.Local.Run(ctx, remote.LocalHost, remote.Cmd("git", "log", "-n", "1", "--format=%H").In(r.Dir))
		if lerr != nil {
			return "", fmt.Errorf("resolve local HEAD: %w", lerr)
		}
		commit = strings.TrimSpace(res.Stdout)
	}
	if !commitPattern.MatchString(commit) {
		return "", fmt.Errorf("local HEAD %q is not a commit id", commit)
	}
	return commit, nil
}

func (r GitResolver) openHead() (string, error) {
	repo, err := git.PlainOpenWithOptions(r.Dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// FixedCommit pins deploys to a commit given on the command line.
type FixedCommit string

func (c FixedCommit) HeadCommit(context.Context) (string, error) {
	commit := strings.ToLower(strings.TrimSpace(string(c)))
	if !commitPattern.MatchString(commit) {
		return "", fmt.Errorf("%q is not a full commit id", string(c))
	}
	return commit, nil
}
