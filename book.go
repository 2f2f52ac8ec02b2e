package match

import "time"

// OrderBook matches incoming limit orders against resting ones under strict
// price-time priority. It holds two side queues (bids descending, asks
// ascending) of references into ring-owned slots; the book never allocates or
// frees order storage itself.
//
// The book is owned exclusively by the matching engine goroutine. Submit and
// the direct in-place mutation of slot quantities must never be reached from
// the producer side.
type OrderBook struct {
	bidQueue  *sideQueue
	askQueue  *sideQueue
	publisher EventPublisher
}

// NewOrderBook creates a new order book that reports events to publisher.
func NewOrderBook(publisher EventPublisher) *OrderBook {
	if publisher == nil {
		publisher = NewDiscardEventPublisher()
	}

	return &OrderBook{
		bidQueue:  newBidQueue(),
		askQueue:  newAskQueue(),
		publisher: publisher,
	}
}

// Submit matches the incoming order against the opposite side and rests any
// remainder at its own price level.
//
// Matching walks the best opposite level while it crosses. Within a level,
// resting orders fill strictly in arrival order; the trade price is always
// the resting (maker) order's price. Both the incoming and the resting
// quantities are decremented in place; a fully filled resting order is
// unlinked from its level, and an emptied level is removed immediately. An
// incoming order that fully fills never touches its own side.
func (book *OrderBook) Submit(incoming *OrderSlot) {
	var myQueue, targetQueue *sideQueue
	if incoming.Side == Buy {
		myQueue = book.bidQueue
		targetQueue = book.askQueue
	} else {
		myQueue = book.askQueue
		targetQueue = book.bidQueue
	}

	now := time.Now().UTC()

	for incoming.Quantity > 0 {
		level := targetQueue.bestLevel()
		if level == nil {
			break
		}

		best := level.head

		// Crossing test against the best opposite price.
		if incoming.Side == Buy && incoming.Price.LessThan(best.Price) ||
			incoming.Side == Sell && incoming.Price.GreaterThan(best.Price) {
			break
		}

		for resting := level.head; resting != nil && incoming.Quantity > 0; {
			next := resting.next

			tradeQty := incoming.Quantity
			if resting.Quantity < tradeQty {
				tradeQty = resting.Quantity
			}

			incoming.Quantity -= tradeQty
			resting.Quantity -= tradeQty
			targetQueue.reduce(resting.Price, tradeQty)

			ev := NewMatchEvent(incoming, resting, resting.Price, tradeQty, now)
			book.publisher.Publish(ev)
			releaseBookEvent(ev)

			if resting.Quantity == 0 {
				targetQueue.unlink(resting)
			}

			resting = next
		}
	}

	if incoming.Quantity > 0 {
		myQueue.insert(incoming)

		ev := NewOpenEvent(incoming, now)
		book.publisher.Publish(ev)
		releaseBookEvent(ev)
	}
}

// Depth returns the aggregated book depth up to limit levels per side.
func (book *OrderBook) Depth(limit uint32) (bids, asks []*DepthItem) {
	return book.bidQueue.depth(limit), book.askQueue.depth(limit)
}

// Stats contains aggregate counters for both sides of the book.
type Stats struct {
	BidOrderCount int64
	BidDepthCount int64
	AskOrderCount int64
	AskDepthCount int64
}

// Stats returns order and price level counts for both sides.
func (book *OrderBook) Stats() Stats {
	return Stats{
		BidOrderCount: book.bidQueue.orderCount(),
		BidDepthCount: book.bidQueue.depthCount(),
		AskOrderCount: book.askQueue.orderCount(),
		AskDepthCount: book.askQueue.depthCount(),
	}
}
