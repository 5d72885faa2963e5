package dbexec

import (
	"context"
	"time"
)

// TimeoutExecutor bounds every query, including reading its rows, by a
// fixed timeout. The deadline is released when the rows are closed.
type TimeoutExecutor struct {
	inner   QueryExecutor
	timeout time.Duration
}

// NewTimeoutExecutor wraps inner. A non-positive timeout disables the bound.
func NewTimeoutExecutor(inner QueryExecutor, timeout time.Duration) *TimeoutExecutor {
	return &TimeoutExecutor{inner: inner, timeout: timeout}
}

func (e *TimeoutExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.timeout <= 0 {
		return e.inner.QueryContext(ctx, query, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	rows, err := e.inner.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &boundedRows{Rows: rows, cleanup: cancel}, nil
}

type boundedRows struct {
	Rows
	cleanup func()
}

func (r *boundedRows) Close() error {
	defer r.cleanup()
	return r.Rows.Close()
}
