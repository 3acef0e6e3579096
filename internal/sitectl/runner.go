package sitectl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Op is one runbook operation applied to a single target.
type Op func(ctx context.Context, t Target) error

// RunEach applies op to every target in order. A failed host does not stop
// the following ones; all failures are returned joined.
func RunEach(ctx context.Context, targets []Target, op Op, logger *zap.Logger) error {
	var errs []error
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		log := logger.With(zap.String("host", t.Host), zap.Stringer("kind", t.Kind))
		log.Info("host started")
		if err := op(ctx, t); err != nil {
			log.Error("host failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("host finished", zap.Duration("elapsed", time.Since(start)))
	}
	return errors.Join(errs...)
}
