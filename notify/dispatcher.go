package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher asynchronously forwards events to a sink. It is the only
// detached concurrency in the engine; it is never awaited by a flow and
// publish failures are logged and swallowed.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	log       *zap.Logger
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the forwarding goroutine. A disabled config
// returns nil, which all methods tolerate.
func NewDispatcher(cfg Config, sink Sink, log *zap.Logger) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		log:  log,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.publish(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) publish(event Event) {
	if err := d.sink.Publish(context.Background(), event); err != nil {
		d.log.Warn("revocation event publish failed",
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// Emit hands an event to the forwarding goroutine. With DropIfFull set a
// full buffer increments the drop counter instead of blocking.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains buffered events and stops the forwarding goroutine.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded due to backpressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
