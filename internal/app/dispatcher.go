package app

import (
	"sync"

	"go.uber.org/zap"
)

// Dispatcher delivers completion callbacks on the context that owns the
// consumer's state.
type Dispatcher interface {
	// Dispatch schedules fn for delivery
	Dispatch(fn func())

	// Close drains pending deliveries and stops the dispatcher
	Close()
}

// SerialDispatcher runs every callback on one goroutine, in the order
// they were dispatched. Two callbacks never run at the same time.
type SerialDispatcher struct {
	queue  chan func()
	done   chan struct{}
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewSerialDispatcher starts the delivery goroutine
func NewSerialDispatcher(buffer int, logger *zap.Logger) *SerialDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &SerialDispatcher{
		queue:  make(chan func(), buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go d.loop()
	return d
}

func (d *SerialDispatcher) loop() {
	defer close(d.done)
	for fn := range d.queue {
		d.deliver(fn)
	}
}

func (d *SerialDispatcher) deliver(fn func()) {
	deliver(d.logger, fn)
}

// deliver runs fn and logs a panic instead of propagating it
func deliver(logger *zap.Logger, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Completion callback panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
	}()
	fn()
}

// Dispatch queues fn. After Close it runs fn on the calling goroutine.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.deliver(fn)
		return
	}
	d.queue <- fn
	d.mu.RUnlock()
}

// Close stops accepting callbacks and waits for the queue to drain
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}

// InlineDispatcher runs callbacks on the worker goroutine that produced
// them. A panicking callback is logged to Logger, or dropped when it is nil.
type InlineDispatcher struct {
	Logger *zap.Logger
}

func (d InlineDispatcher) Dispatch(fn func()) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	deliver(log, fn)
}

func (InlineDispatcher) Close() {}
