package context

import (
	"context"
	"testing"
	"time"
)

// WithTest derives a context which is done 1 second before the deadline of the test,
// so that the test can clean up resources.
//
// Without the deadline, ctx is returned as it is.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	if deadline, ok := t.Deadline(); ok {
		return context.WithDeadline(ctx, deadline.Add(-time.Second))
	}
	return ctx, func() {}
}
