package match

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/quagmt/udecimal"
)

// WaitStrategy controls how the consumer loop behaves when the ring is empty.
type WaitStrategy int8

const (
	// WaitSpin busy-polls between empty polls. Lowest latency, pins a core.
	WaitSpin WaitStrategy = iota
	// WaitYield calls runtime.Gosched between empty polls, trading some
	// latency for a schedulable consumer goroutine.
	WaitYield
)

const defaultMetricsCapacity = 1_000_000

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWaitStrategy sets the consumer's empty-ring wait strategy.
func WithWaitStrategy(ws WaitStrategy) EngineOption {
	return func(e *Engine) {
		e.wait = ws
	}
}

// WithMetricsCapacity sets how many latency samples the engine retains.
func WithMetricsCapacity(capacity int) EngineOption {
	return func(e *Engine) {
		e.metricsCapacity = capacity
	}
}

// WithEventPublisher sets the sink for order book events.
func WithEventPublisher(p EventPublisher) EngineOption {
	return func(e *Engine) {
		e.publisher = p
	}
}

// Engine is the matching engine consumer loop. It owns the slot ring's
// consumer side, the order book, and the metrics store; none of those may be
// touched from the producer side while the loop is running. Producers only
// call SubmitOrder.
type Engine struct {
	ring    *Ring
	book    *OrderBook
	metrics *Metrics
	wait    WaitStrategy
	running atomic.Bool
	done    chan struct{}

	publisher       EventPublisher
	metricsCapacity int
}

// NewEngine creates an engine with a ring of ringCapacity slots. The ring
// capacity must be a power of 2.
func NewEngine(ringCapacity int64, opts ...EngineOption) (*Engine, error) {
	ring, err := NewRing(ringCapacity)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		ring:            ring,
		wait:            WaitSpin,
		done:            make(chan struct{}),
		publisher:       NewDiscardEventPublisher(),
		metricsCapacity: defaultMetricsCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.book = NewOrderBook(e.publisher)
	e.metrics = NewMetrics(e.metricsCapacity)
	e.running.Store(true)

	return e, nil
}

// SubmitOrder claims the next ring slot and publishes the order fields into
// it. This is the producer-side entry point; it is wait-free and must be
// called from at most one goroutine at a time. Returns ErrShutdown once Stop
// has been called: a stopped consumer would never drain the slot.
func (e *Engine) SubmitOrder(id string, side Side, price udecimal.Decimal, quantity int64) (*OrderSlot, error) {
	if !e.running.Load() {
		return nil, ErrShutdown
	}

	slot := e.ring.Claim()
	slot.Write(id, side, price, quantity)
	return slot, nil
}

// Run drives the consumer loop until Stop is called. It polls the ring,
// matches each published order, records its processing latency, and recycles
// the slot. Run must be called from exactly one goroutine.
func (e *Engine) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	for e.running.Load() {
		slot := e.ring.TryPoll()
		if slot == nil {
			if e.wait == WaitYield {
				runtime.Gosched()
			}
			continue
		}

		e.process(slot)
	}
}

// process matches one order and recycles its slot. A panic while matching is
// contained to this iteration and logged; the slot is cleared either way so
// the ring cannot stall on a poisoned slot.
func (e *Engine) process(slot *OrderSlot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("order processing failed",
				"order_id", slot.ID,
				"panic", r)
		}
		slot.Clear()
	}()

	start := time.Now()
	e.book.Submit(slot)
	e.metrics.Record(time.Since(start))
}

// Stop signals the consumer loop to exit and waits for it to finish its
// current iteration. Returns ErrTimeout if the context expires first.
// Stopping is cooperative: a starved consumer delays the observation of the
// flag by one spin iteration at most.
func (e *Engine) Stop(ctx context.Context) error {
	e.running.Store(false)

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// Ring returns the engine's slot ring.
func (e *Engine) Ring() *Ring {
	return e.ring
}

// Book returns the order book. The book is owned by the consumer loop; only
// read it after Stop has returned.
func (e *Engine) Book() *OrderBook {
	return e.book
}

// Metrics returns the engine's metrics store.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}
