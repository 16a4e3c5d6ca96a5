// Package saga runs multi-step writes that span stores without a shared
// transaction, undoing completed steps when a later one fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vrcface/server/internal/observability"
)

// Step is one forward action and its undo. Compensate must be idempotent: it
// may run more than once.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// FailureHook is told about compensations that never succeeded.
type FailureHook func(ctx context.Context, saga, step string, err error)

// Runner executes sagas.
type Runner struct {
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
	onFail   FailureHook
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner constructs a runner. attempts bounds each compensation; backoff is
// the first retry delay and doubles after every failure.
func NewRunner(attempts int, backoff time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Runner {
	if attempts <= 0 {
		attempts = 1
	}
	return &Runner{
		attempts: attempts,
		backoff:  backoff,
		logger:   logger,
		metrics:  metrics,
		sleep:    sleepCtx,
	}
}

// OnCompensationFailure registers fn to observe unrecovered steps.
func (r *Runner) OnCompensationFailure(fn FailureHook) {
	r.onFail = fn
}

// Error reports a failed saga. Err is the forward failure; Unrecovered lists
// steps whose compensation did not succeed.
type Error struct {
	Saga        string
	Step        string
	Err         error
	Unrecovered []string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("saga %s failed at %s: %v", e.Saga, e.Step, e.Err)
	if len(e.Unrecovered) > 0 {
		msg += "; compensation failed for " + strings.Join(e.Unrecovered, ", ")
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Run executes steps in order. When one fails, the completed steps are
// compensated in reverse order and an *Error wrapping the failure is returned.
func (r *Runner) Run(ctx context.Context, name string, steps ...Step) error {
	done := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := step.Do(ctx); err != nil {
			sagaErr := &Error{Saga: name, Step: step.Name, Err: err}
			// the request context may already be cancelled; undo must still run
			compCtx := context.WithoutCancel(ctx)
			for i := len(done) - 1; i >= 0; i-- {
				if cerr := r.compensate(compCtx, name, done[i]); cerr != nil {
					sagaErr.Unrecovered = append(sagaErr.Unrecovered, done[i].Name)
				}
			}
			return sagaErr
		}
		done = append(done, step)
	}
	return nil
}

func (r *Runner) compensate(ctx context.Context, name string, step Step) error {
	if step.Compensate == nil {
		return nil
	}

	delay := r.backoff
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = step.Compensate(ctx)
		r.metrics.RecordCompensation(step.Name, err == nil)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("compensation succeeded after retry",
					zap.String("saga", name), zap.String("step", step.Name), zap.Int("attempt", attempt))
			}
			return nil
		}
		r.logger.Warn("compensation attempt failed",
			zap.String("saga", name), zap.String("step", step.Name), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == r.attempts {
			break
		}
		if serr := r.sleep(ctx, delay); serr != nil {
			err = errors.Join(err, serr)
			break
		}
		delay *= 2
	}

	r.logger.Error("compensation failed",
		zap.String("saga", name), zap.String("step", step.Name), zap.Int("attempts", r.attempts), zap.Error(err))
	if r.onFail != nil {
		r.onFail(ctx, name, step.Name, err)
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
