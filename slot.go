package match

import (
	"sync/atomic"
	"time"

	"github.com/quagmt/udecimal"
)

// Side represents the order side (Buy/Sell).
type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderSlot is a reusable, mutable order record. Slots are allocated once by
// the Ring and cycled between exactly two owners: the producer writes fields
// and publishes via the ready flag, the consumer matches the order and clears
// the flag when done. Quantity is decremented in place by the order book
// during matching; no other component mutates a published slot.
type OrderSlot struct {
	ID        string
	Side      Side
	Price     udecimal.Decimal
	Quantity  int64 // remaining unfilled units
	Timestamp int64 // unix nanos, stamped by Write

	// ready gates the producer/consumer handoff. Write stores it last; the
	// consumer must observe ready == true before reading any other field.
	ready atomic.Bool

	// Intrusive FIFO pointers, owned by the book's price level.
	next *OrderSlot
	prev *OrderSlot
}

// Write overwrites every order field, stamps the creation time, and publishes
// the slot. The ready store must stay the final write: it is the release
// barrier that makes the field writes visible to the consumer.
func (s *OrderSlot) Write(id string, side Side, price udecimal.Decimal, quantity int64) {
	s.ID = id
	s.Side = side
	s.Price = price
	s.Quantity = quantity
	s.Timestamp = time.Now().UnixNano()
	s.ready.Store(true)
}

// Clear marks the slot free for producer reuse. The remaining fields keep
// their stale values; they are overwritten by the next Write and never read
// while ready is false.
func (s *OrderSlot) Clear() {
	s.ready.Store(false)
}

// Ready reports whether the slot is published and awaiting consumption.
func (s *OrderSlot) Ready() bool {
	return s.ready.Load()
}
