package match

import (
	"github.com/huandu/skiplist"
	"github.com/quagmt/udecimal"
)

// priceLevel is a single price point: a FIFO of resting slots in arrival
// order plus aggregates for depth reporting.
type priceLevel struct {
	totalQuantity int64
	head          *OrderSlot
	tail          *OrderSlot
	count         int64
}

// DepthItem is one aggregated price level as reported by depth queries.
type DepthItem struct {
	Price    udecimal.Decimal
	Quantity int64
	Count    int64
}

// sideQueue holds one side of the book. Price levels live in a skip list
// ordered best-price-first (descending for bids, ascending for asks); level
// lookup goes through the skip list comparator so numerically equal prices at
// different scales ("100" vs "100.0") always resolve to the same level. The
// queue stores references into ring-owned slots; it never allocates or frees
// order storage.
type sideQueue struct {
	side        Side
	totalOrders int64
	depths      int64
	levelList   *skiplist.SkipList
}

// newBidQueue creates the buy side. Levels are sorted by price in descending
// order (highest bid first).
func newBidQueue() *sideQueue {
	return &sideQueue{
		side: Buy,
		levelList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(udecimal.Decimal)
			d2, _ := rhs.(udecimal.Decimal)

			if d1.LessThan(d2) {
				return 1
			} else if d1.GreaterThan(d2) {
				return -1
			}

			return 0
		})),
	}
}

// newAskQueue creates the sell side. Levels are sorted by price in ascending
// order (lowest ask first).
func newAskQueue() *sideQueue {
	return &sideQueue{
		side: Sell,
		levelList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(udecimal.Decimal)
			d2, _ := rhs.(udecimal.Decimal)

			if d1.GreaterThan(d2) {
				return 1
			} else if d1.LessThan(d2) {
				return -1
			}

			return 0
		})),
	}
}

// insert appends the slot to the FIFO at its price level, creating the level
// if absent. Arrival order within a level is preserved: later orders always
// queue behind earlier ones.
func (q *sideQueue) insert(slot *OrderSlot) {
	el := q.levelList.Get(slot.Price)
	if el != nil {
		level, _ := el.Value.(*priceLevel)

		slot.prev = level.tail
		slot.next = nil
		if level.tail != nil {
			level.tail.next = slot
		}
		level.tail = slot
		if level.head == nil {
			level.head = slot
		}

		level.totalQuantity += slot.Quantity
		level.count++
		q.totalOrders++
	} else {
		level := &priceLevel{
			head:          slot,
			tail:          slot,
			totalQuantity: slot.Quantity,
			count:         1,
		}
		slot.next = nil
		slot.prev = nil

		q.levelList.Set(slot.Price, level)

		q.totalOrders++
		q.depths++
	}
}

// unlink removes a resting slot from its price level and drops the level when
// its FIFO empties. The slot's remaining Quantity is subtracted from the
// level aggregate; during matching it is already zero because fills reduce
// the aggregate as they happen.
func (q *sideQueue) unlink(slot *OrderSlot) {
	el := q.levelList.Get(slot.Price)
	if el == nil {
		return
	}
	level, _ := el.Value.(*priceLevel)

	if slot.prev != nil {
		slot.prev.next = slot.next
	} else {
		level.head = slot.next
	}

	if slot.next != nil {
		slot.next.prev = slot.prev
	} else {
		level.tail = slot.prev
	}

	slot.next = nil
	slot.prev = nil

	level.totalQuantity -= slot.Quantity
	level.count--
	q.totalOrders--

	if level.count == 0 {
		q.levelList.RemoveElement(el)
		q.depths--
	}
}

// bestLevel returns the level at the best price, or nil if the side is empty.
func (q *sideQueue) bestLevel() *priceLevel {
	el := q.levelList.Front()
	if el == nil {
		return nil
	}

	level, _ := el.Value.(*priceLevel)
	return level
}

// reduce subtracts a filled quantity from the level aggregate after an
// in-place partial fill of a resting slot.
func (q *sideQueue) reduce(price udecimal.Decimal, qty int64) {
	el := q.levelList.Get(price)
	if el == nil {
		return
	}

	level, _ := el.Value.(*priceLevel)
	level.totalQuantity -= qty
}

// orderCount returns the total number of resting orders on this side.
func (q *sideQueue) orderCount() int64 {
	return q.totalOrders
}

// depthCount returns the number of price levels on this side.
func (q *sideQueue) depthCount() int64 {
	return q.depths
}

// depth returns aggregated price levels, best price first, up to limit.
func (q *sideQueue) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	el := q.levelList.Front()

	var i uint32 = 0
	for i < limit && el != nil {
		level, _ := el.Value.(*priceLevel)
		d := DepthItem{
			Price:    level.head.Price,
			Quantity: level.totalQuantity,
			Count:    level.count,
		}

		result = append(result, &d)

		el = el.Next()
		i++
	}

	return result
}
