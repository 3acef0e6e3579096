package sitectl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRunEachContinuesAfterFailure(t *testing.T) {
	var visited []string
	op := func(_ context.Context, target Target) error {
		visited = append(visited, target.Host)
		if target.Kind == KindProd {
			return stepErr(ErrSwitch, target.Host, "stop-proxy", errors.New("unit not found"))
		}
		return nil
	}

	err := RunEach(context.Background(), []Target{prod, staging}, op, zap.NewNop())
	assert.Equal(t, []string{prodHost, stagingHost}, visited)
	assert.True(t, errors.Is(err, ErrSwitch))
	assert.Contains(t, err.Error(), "prod.example.com: stop-proxy: unit not found")
}

func TestRunEachJoinsFailures(t *testing.T) {
	op := func(_ context.Context, target Target) error {
		return stepErr(ErrProvision, target.Host, "install nginx site", errors.New("denied"))
	}

	err := RunEach(context.Background(), []Target{prod, staging}, op, zap.NewNop())
	assert.ErrorContains(t, err, prodHost)
	assert.ErrorContains(t, err, stagingHost)
}

func TestRunEachStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RunEach(ctx, []Target{prod}, func(context.Context, Target) error {
		called = true
		return nil
	}, zap.NewNop())
	assert.False(t, called)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEachSucceeds(t *testing.T) {
	err := RunEach(context.Background(), []Target{prod, staging}, func(context.Context, Target) error {
		return nil
	}, zap.NewNop())
	assert.NoError(t, err)
}
