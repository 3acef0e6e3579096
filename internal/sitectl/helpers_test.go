package sitectl

import (
	"bytes"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/example/sitectl/internal/remote/remotetest"
)

const (
	prodHost    = "prod.example.com"
	stagingHost = "staging.example.com"
	testCommit  = "0123456789abcdef0123456789abcdef01234567"
)

var (
	prod    = Target{Host: prodHost, Kind: KindProd}
	staging = Target{Host: stagingHost, Kind: KindStaging}
)

func testConfig() Config {
	return Config{
		RepoURL:   "https://example.com/superlists.git",
		User:      "deployer",
		KeyFile:   "/home/deployer/.ssh/id_ed25519",
		Hosts:     []string{prodHost},
		App:       defaultApp,
		Worker:    defaultWorker,
		Python:    defaultPython,
		SSHPort:   22,
		LocalRepo: ".",
	}
}

func newTestOps(t *testing.T, cfg Config, commits CommitResolver) (*Operations, *remotetest.Fake, *bytes.Buffer) {
	t.Helper()
	fake := remotetest.New()
	var out bytes.Buffer
	return NewOperations(cfg, fake, commits, &out, zap.NewNop()), fake, &out
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
