package match

import (
	"sync"
	"time"

	"github.com/quagmt/udecimal"
)

// EventType classifies order book events.
type EventType string

const (
	// EventTypeOpen is emitted when an order rests on the book.
	EventTypeOpen EventType = "open"
	// EventTypeMatch is emitted once per fill. Price is the maker's price.
	EventTypeMatch EventType = "match"
)

// BookEvent is one order book event handed to the event publisher.
//
// Events are recycled to a sync.Pool after Publish returns, so publishers
// must either consume them synchronously or copy them before returning.
type BookEvent struct {
	Type         EventType        `json:"type"`
	Side         Side             `json:"side"` // taker side for match events
	Price        udecimal.Decimal `json:"price"`
	Quantity     int64            `json:"quantity"`
	Amount       udecimal.Decimal `json:"amount,omitempty"` // Price * Quantity, match only
	TakerOrderID string           `json:"taker_order_id"`
	MakerOrderID string           `json:"maker_order_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

var bookEventPool = sync.Pool{
	New: func() any {
		return new(BookEvent)
	},
}

func acquireBookEvent() *BookEvent {
	return bookEventPool.Get().(*BookEvent)
}

func releaseBookEvent(ev *BookEvent) {
	// Reset to zero values. The zero udecimal.Decimal represents 0, which is valid.
	*ev = BookEvent{}
	bookEventPool.Put(ev)
}

// NewOpenEvent builds an open event for an order resting on the book.
func NewOpenEvent(order *OrderSlot, now time.Time) *BookEvent {
	ev := acquireBookEvent()
	ev.Type = EventTypeOpen
	ev.Side = order.Side
	ev.Price = order.Price
	ev.Quantity = order.Quantity
	ev.TakerOrderID = order.ID
	ev.CreatedAt = now
	return ev
}

// NewMatchEvent builds a match event for a single fill. The trade price is
// the resting (maker) order's price.
func NewMatchEvent(taker, maker *OrderSlot, price udecimal.Decimal, quantity int64, now time.Time) *BookEvent {
	ev := acquireBookEvent()
	ev.Type = EventTypeMatch
	ev.Side = taker.Side
	ev.Price = price
	ev.Quantity = quantity
	ev.Amount = price.Mul(udecimal.MustFromInt64(quantity, 0))
	ev.TakerOrderID = taker.ID
	ev.MakerOrderID = maker.ID
	ev.CreatedAt = now
	return ev
}
