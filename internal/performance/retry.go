package performance

import (
	"context"

	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/pkg/logger"
)

// call runs fn under the per-attempt query timeout and retries it once when
// the failure is transient and the caller is still waiting
func call[T any](ctx context.Context, e *Engine, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	value, err := attempt(ctx, e, fn)
	if err == nil || !apperror.IsRetryable(err) || ctx.Err() != nil {
		return value, err
	}

	logger.FromContext(ctx).Warn("Store operation failed, retrying once",
		zap.String("operation", op),
		zap.Error(err),
	)
	return attempt(ctx, e, fn)
}

// exec is call for operations without a result
func exec(ctx context.Context, e *Engine, op string, fn func(ctx context.Context) error) error {
	_, err := call(ctx, e, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func attempt[T any](ctx context.Context, e *Engine, fn func(ctx context.Context) (T, error)) (T, error) {
	if e.queryTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()
	return fn(attemptCtx)
}
