package match

import "sync"

// EventPublisher is the sink for order book events (fills and opens).
//
// Publish is invoked synchronously from the matching path and must not block
// indefinitely. Implementations must either process events before returning
// or clone them: the caller recycles BookEvent objects to a sync.Pool after
// Publish returns.
type EventPublisher interface {
	Publish(...*BookEvent)
}

// MemoryEventPublisher stores event copies in memory, useful for testing.
type MemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*BookEvent
}

// NewMemoryEventPublisher creates a new MemoryEventPublisher.
func NewMemoryEventPublisher() *MemoryEventPublisher {
	return &MemoryEventPublisher{
		events: make([]*BookEvent, 0),
	}
}

// Publish appends copies of the events to the in-memory slice.
func (m *MemoryEventPublisher) Publish(events ...*BookEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		cpy := new(BookEvent)
		*cpy = *ev
		m.events = append(m.events, cpy)
	}
}

// Count returns the number of events stored.
func (m *MemoryEventPublisher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Get returns the event at the specified index.
func (m *MemoryEventPublisher) Get(index int) *BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events[index]
}

// Events returns a copy of all stored events.
func (m *MemoryEventPublisher) Events() []*BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*BookEvent, len(m.events))
	copy(events, m.events)
	return events
}

// Trades returns only the match events.
func (m *MemoryEventPublisher) Trades() []*BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trades := make([]*BookEvent, 0, len(m.events))
	for _, ev := range m.events {
		if ev.Type == EventTypeMatch {
			trades = append(trades, ev)
		}
	}
	return trades
}

// DiscardEventPublisher discards all events, useful for benchmarking.
type DiscardEventPublisher struct {
}

// NewDiscardEventPublisher creates a new DiscardEventPublisher.
func NewDiscardEventPublisher() *DiscardEventPublisher {
	return &DiscardEventPublisher{}
}

// Publish does nothing.
func (p *DiscardEventPublisher) Publish(events ...*BookEvent) {

}

// SlogEventPublisher writes fills to the package logger.
type SlogEventPublisher struct {
}

// NewSlogEventPublisher creates a new SlogEventPublisher.
func NewSlogEventPublisher() *SlogEventPublisher {
	return &SlogEventPublisher{}
}

// Publish logs one line per fill.
func (p *SlogEventPublisher) Publish(events ...*BookEvent) {
	for _, ev := range events {
		if ev.Type == EventTypeMatch {
			logger.Info("trade executed",
				"quantity", ev.Quantity,
				"price", ev.Price.String(),
				"taker_order_id", ev.TakerOrderID,
				"maker_order_id", ev.MakerOrderID)
		}
	}
}

// FanoutEventPublisher forwards events to several publishers in order.
type FanoutEventPublisher struct {
	targets []EventPublisher
}

// NewFanoutEventPublisher creates a publisher that fans out to targets.
func NewFanoutEventPublisher(targets ...EventPublisher) *FanoutEventPublisher {
	return &FanoutEventPublisher{targets: targets}
}

// Publish forwards the events to every target.
func (p *FanoutEventPublisher) Publish(events ...*BookEvent) {
	for _, t := range p.targets {
		t.Publish(events...)
	}
}
