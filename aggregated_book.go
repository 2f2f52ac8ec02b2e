package match

import (
	"sync"

	"github.com/igrmk/treemap/v2"
	"github.com/quagmt/udecimal"
)

// AggregatedBook maintains a depth-only view of the order book, tracking
// price levels and their aggregated quantities. It is rebuilt from the event
// stream, so downstream consumers (top-of-book logging, feeds) can observe
// book depth without touching the engine-owned live book.
//
// AggregatedBook implements EventPublisher and can be wired directly as the
// engine's sink or fanned out behind a FanoutEventPublisher. Unlike the hot
// path it takes a lock: readers live on other goroutines.
type AggregatedBook struct {
	mu  sync.RWMutex
	ask *treemap.TreeMap[udecimal.Decimal, int64]
	bid *treemap.TreeMap[udecimal.Decimal, int64]
}

// NewAggregatedBook creates an AggregatedBook with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	less := func(a, b udecimal.Decimal) bool {
		return a.LessThan(b)
	}

	return &AggregatedBook{
		ask: treemap.NewWithKeyCompare[udecimal.Decimal, int64](less),
		bid: treemap.NewWithKeyCompare[udecimal.Decimal, int64](less),
	}
}

// Publish applies events to the aggregated view. Implements EventPublisher.
func (ab *AggregatedBook) Publish(events ...*BookEvent) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	for _, ev := range events {
		ab.apply(ev)
	}
}

func (ab *AggregatedBook) apply(ev *BookEvent) {
	switch ev.Type {
	case EventTypeOpen:
		levels := ab.sideLevels(ev.Side)
		current, _ := levels.Get(ev.Price)
		levels.Set(ev.Price, current+ev.Quantity)
	case EventTypeMatch:
		// A match consumes maker liquidity: the opposite side of the taker.
		levels := ab.sideLevels(ev.Side.Opposite())
		current, ok := levels.Get(ev.Price)
		if !ok {
			return
		}

		current -= ev.Quantity
		if current > 0 {
			levels.Set(ev.Price, current)
		} else {
			levels.Del(ev.Price)
		}
	}
}

func (ab *AggregatedBook) sideLevels(side Side) *treemap.TreeMap[udecimal.Decimal, int64] {
	if side == Buy {
		return ab.bid
	}
	return ab.ask
}

// Depth returns the aggregated quantity at a price level for the given side.
// Returns zero if the price level does not exist.
func (ab *AggregatedBook) Depth(side Side, price udecimal.Decimal) int64 {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	qty, _ := ab.sideLevels(side).Get(price)
	return qty
}

// BestBid returns the highest bid level, or ok == false if the side is empty.
func (ab *AggregatedBook) BestBid() (price udecimal.Decimal, quantity int64, ok bool) {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	it := ab.bid.Reverse()
	if !it.Valid() {
		return udecimal.Decimal{}, 0, false
	}
	return it.Key(), it.Value(), true
}

// BestAsk returns the lowest ask level, or ok == false if the side is empty.
func (ab *AggregatedBook) BestAsk() (price udecimal.Decimal, quantity int64, ok bool) {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	it := ab.ask.Iterator()
	if !it.Valid() {
		return udecimal.Decimal{}, 0, false
	}
	return it.Key(), it.Value(), true
}

// Levels returns the number of price levels on the given side.
func (ab *AggregatedBook) Levels(side Side) int {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	return ab.sideLevels(side).Len()
}
