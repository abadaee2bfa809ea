package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher decouples account flows from sink latency: Emit queues the
// event and a single worker goroutine delivers queued events to the sink in
// order. A nil *Dispatcher is the disabled state; every method on it is a
// no-op, so callers never branch on whether auditing is on.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	dropOnFull bool

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

// NewDispatcher starts the delivery worker. It returns nil when auditing is
// disabled in cfg.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, buffer),
		dropOnFull: cfg.DropIfFull,
		done:       make(chan struct{}),
	}
	go d.deliver()
	return d
}

// deliver forwards queued events until the queue is closed, then flushes
// whatever is left before signalling done. Closing the queue is therefore
// the only shutdown signal the worker needs.
func (d *Dispatcher) deliver() {
	defer close(d.done)
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
	}
}

// Emit queues an event for delivery. With DropIfFull set, a full queue
// increments the drop counter instead of blocking the account flow;
// otherwise Emit waits until the queue accepts the event or ctx is done.
// Events emitted after Close are discarded.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// The read lock keeps Close from closing the queue mid-send.
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropOnFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	}
}

// Close stops intake and blocks until every queued event has reached the
// sink. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
