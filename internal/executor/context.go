package executor

import (
	"context"
	"time"

	"github.com/alkim0/disjunct-opt/internal/config"
)

// ExecutionContext carries the context.Context and wall-clock budget for
// one RunFilter call. Checked between atom evaluations so a cancelled or
// overrunning filter aborts promptly instead of running every atom in a
// large plan to completion.
type ExecutionContext struct {
	ctx       context.Context
	config    *config.Config
	startTime time.Time
}

// NewExecutionContext returns an ExecutionContext governed by ctx and cfg.
func NewExecutionContext(ctx context.Context, cfg *config.Config) *ExecutionContext {
	return &ExecutionContext{ctx: ctx, config: cfg, startTime: time.Now()}
}

// Context returns the underlying context.Context.
func (ec *ExecutionContext) Context() context.Context {
	return ec.ctx
}

// Elapsed returns time since the context was created.
func (ec *ExecutionContext) Elapsed() time.Duration {
	return time.Since(ec.startTime)
}

// checkAbort returns an error if ctx was cancelled or the configured query
// timeout was exceeded; nil otherwise.
func (ec *ExecutionContext) checkAbort() error {
	select {
	case <-ec.ctx.Done():
		return ErrExecutionAborted
	default:
	}
	if ec.config != nil && ec.config.Query.QueryTimeout > 0 && ec.Elapsed() > ec.config.Query.QueryTimeout {
		return ErrExecutionTimeout
	}
	return nil
}
