package sitectl

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sitectl/internal/remote"
	"github.com/example/sitectl/internal/remote/remotetest"
)

func TestStatus(t *testing.T) {
	ops, fake, _ := newTestOps(t, testConfig(), nil)
	fake.Link(prodEnabled, prodAvailable)
	fake.Mkdir(prodSiteDir + "/.git")
	fake.Handle("git rev-parse HEAD", func(*remotetest.Fake, remote.Command) (string, error) {
		return testCommit + "\n", nil
	})
	fake.FailOn("systemctl is-active --quiet gunicorn-superlists-staging.example.com", 3)

	st, err := ops.Status(context.Background(), prod)
	require.NoError(t, err)
	assert.Equal(t, HostStatus{
		Host:   prodHost,
		State:  "prod-enabled",
		Commit: testCommit,
		Proxy:  true,
		Workers: []UnitStatus{
			{Unit: "gunicorn-superlists-prod.example.com", Enabled: true, Active: true},
			{Unit: "gunicorn-superlists-staging.example.com", Enabled: false, Active: false},
		},
	}, st)
	for _, line := range fake.Lines() {
		assert.NotContains(t, line, "sudo", "status must not need root")
	}
}

func TestStatusWithoutCheckout(t *testing.T) {
	ops, _, _ := newTestOps(t, testConfig(), nil)
	st, err := ops.Status(context.Background(), staging)
	require.NoError(t, err)
	assert.Empty(t, st.Commit)
	assert.Equal(t, "transient", st.State)
}

func TestWriteStatus(t *testing.T) {
	statuses := []HostStatus{{
		Host:   prodHost,
		State:  "prod-enabled",
		Commit: testCommit,
		Proxy:  true,
		Workers: []UnitStatus{
			{Unit: "gunicorn-superlists-prod.example.com", Enabled: true, Active: true},
		},
	}}

	var yml bytes.Buffer
	require.NoError(t, WriteStatus(&yml, statuses, "yaml"))
	assert.Contains(t, yml.String(), "- host: prod.example.com\n")
	assert.Contains(t, yml.String(), "state: prod-enabled\n")
	assert.Contains(t, yml.String(), "site_enabled: true\n")

	var table bytes.Buffer
	require.NoError(t, WriteStatus(&table, statuses, "table"))
	assert.Contains(t, table.String(), "HOST")
	assert.Contains(t, table.String(), "0123456789ab")
	assert.NotContains(t, table.String(), testCommit)

	assert.Error(t, WriteStatus(&table, statuses, "json"))
}
