package sitectl

import (
	"context"
	"strings"

	"github.com/example/sitectl/internal/remote"
)

const secretKeyVar = "DJANGO_SECRET_KEY"

// ensureEnv appends the production flags for t and, only when the file has
// never held one, a freshly generated secret key.
func ensureEnv(ctx context.Context, host *remote.Host, layout Layout, t Target) error {
	envFile := layout.EnvFile(t)
	for _, line := range []string{"DJANGO_DEBUG_FALSE=y", "SITENAME=" + t.Host} {
		if err := host.AppendLineIfMissing(ctx, envFile, line); err != nil {
			return err
		}
	}

	current, err := host.ReadFile(ctx, envFile)
	if err != nil {
		return err
	}
	if strings.Contains(current, secretKeyVar) {
		return nil
	}
	secret, err := GenerateSecret()
	if err != nil {
		return err
	}
	return host.AppendLineIfMissing(ctx, envFile, secretKeyVar+"="+secret)
}
