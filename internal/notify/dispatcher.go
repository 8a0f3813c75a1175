package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBufferSize = 256
	defaultWorkers    = 4
	sendTimeout       = 10 * time.Second
)

// Dispatcher decouples callers from delivery latency. Enqueue never blocks:
// when the buffer is full the message is dropped, counted, and logged, on the
// principle that a slow notification channel must not slow sign-ins down.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	dropped  prometheus.Counter

	queue  chan Message
	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	group  *errgroup.Group
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDroppedCounter wires the dropped-message metric.
func WithDroppedCounter(c prometheus.Counter) DispatcherOption {
	return func(d *Dispatcher) { d.dropped = c }
}

// WithBufferSize overrides the queue depth.
func WithBufferSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Message, n)
		}
	}
}

// NewDispatcher creates and starts a Dispatcher over the given notifier.
// Call Close to drain and stop the workers.
func NewDispatcher(notifier Notifier, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan Message, defaultBufferSize),
	}
	for _, opt := range opts {
		opt(d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < defaultWorkers; i++ {
		d.group.Go(func() error {
			d.work(ctx)
			return nil
		})
	}
	return d
}

// Enqueue queues a message for delivery and reports whether it was accepted.
// Safe to call concurrently with Close; the read lock keeps the queue open
// for the duration of the send.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		if d.dropped != nil {
			d.dropped.Inc()
		}
		d.logger.Warn("notification dropped, dispatch buffer full",
			"recipient_len", len(msg.Recipient),
		)
		return false
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(msg)
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.notifier.Send(ctx, msg); err != nil {
		d.logger.Error("notification delivery failed", "error", err)
	}
}

// Close stops accepting messages, drains the queue, and waits for in-flight
// deliveries to finish.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	err := d.group.Wait()
	d.cancel()
	return err
}
