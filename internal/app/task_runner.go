package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/internal/domain"
)

// TaskRunner executes operations off the caller's goroutine and hands
// each result to a Dispatcher exactly once.
type TaskRunner struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
	mu         sync.RWMutex
	stopped    bool
	pending    sync.WaitGroup
}

// NewTaskRunner creates a task runner. A zero timeout leaves operations
// without a deadline.
func NewTaskRunner(dispatcher Dispatcher, timeout time.Duration, logger *zap.Logger) *TaskRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = InlineDispatcher{Logger: logger}
	}
	return &TaskRunner{
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger,
	}
}

// Submit runs op on its own goroutine and delivers its result to
// onComplete through the runner's dispatcher. onComplete is invoked
// exactly once, including when op panics or the runner is stopped.
// The worker is never interrupted once started.
func Submit[T any](r *TaskRunner, name string, op func(ctx context.Context) domain.Result[T], onComplete func(domain.Result[T])) {
	if onComplete == nil {
		onComplete = func(domain.Result[T]) {}
	}

	r.mu.RLock()
	if r.stopped {
		r.mu.RUnlock()
		r.logger.Warn("Submit after stop", zap.String("operation", name))
		onComplete(domain.Failure[T](domain.Cancelled("task runner stopped")))
		return
	}
	r.pending.Add(1)
	r.mu.RUnlock()

	go func() {
		ctx, cancel := r.operationContext()
		start := time.Now()
		result := execute(ctx, op)
		cancel()

		r.logger.Debug("Operation finished",
			zap.String("operation", name),
			zap.Bool("ok", result.OK()),
			zap.Duration("elapsed", time.Since(start)))

		r.dispatcher.Dispatch(func() {
			defer r.pending.Done()
			onComplete(result)
		})
	}()
}

func (r *TaskRunner) operationContext() (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(context.Background(), r.timeout)
	}
	return context.WithCancel(context.Background())
}

// execute runs op and converts a panic into a backend failure
func execute[T any](ctx context.Context, op func(ctx context.Context) domain.Result[T]) (result domain.Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			result = domain.Failure[T](domain.BackendFailure(fmt.Errorf("panic: %v", p)))
		}
	}()
	return op(ctx)
}

// Wait blocks until every submitted operation has been delivered
func (r *TaskRunner) Wait() {
	r.pending.Wait()
}

// IsRunning returns whether the runner still accepts work
func (r *TaskRunner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.stopped
}

// Stop rejects new submissions, waits for in-flight operations to be
// delivered, then closes the dispatcher. Because it waits for deliveries,
// calling Stop from inside a completion callback never returns; a callback
// that needs to stop the runner must do so from another goroutine
// (go runner.Stop()).
func (r *TaskRunner) Stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return fmt.Errorf("task runner not running")
	}
	r.stopped = true
	r.mu.Unlock()

	r.pending.Wait()
	r.dispatcher.Close()
	return nil
}

// Await submits through submit and blocks until the result arrives
func Await[T any](submit func(onComplete func(domain.Result[T]))) domain.Result[T] {
	ch := make(chan domain.Result[T], 1)
	submit(func(r domain.Result[T]) { ch <- r })
	return <-ch
}

// dispatch hands fn to the runner's dispatcher, for deliveries made while
// an operation is still running
func (r *TaskRunner) dispatch(fn func()) {
	r.dispatcher.Dispatch(fn)
}
