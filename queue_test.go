package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideQueue_BidOrdering(t *testing.T) {
	q := newBidQueue()

	q.insert(newTestSlot("b-1", Buy, "98", 1))
	q.insert(newTestSlot("b-2", Buy, "101", 2))
	q.insert(newTestSlot("b-3", Buy, "99", 3))

	require.Equal(t, int64(3), q.orderCount())
	require.Equal(t, int64(3), q.depthCount())

	best := q.bestLevel()
	require.NotNil(t, best)
	assert.Equal(t, "b-2", best.head.ID, "highest bid first")

	depth := q.depth(10)
	require.Len(t, depth, 3)
	assert.Equal(t, "101", depth[0].Price.String())
	assert.Equal(t, "99", depth[1].Price.String())
	assert.Equal(t, "98", depth[2].Price.String())
}

func TestSideQueue_AskOrdering(t *testing.T) {
	q := newAskQueue()

	q.insert(newTestSlot("a-1", Sell, "105", 1))
	q.insert(newTestSlot("a-2", Sell, "102", 2))
	q.insert(newTestSlot("a-3", Sell, "110", 3))

	best := q.bestLevel()
	require.NotNil(t, best)
	assert.Equal(t, "a-2", best.head.ID, "lowest ask first")

	depth := q.depth(2)
	require.Len(t, depth, 2, "depth respects the limit")
	assert.Equal(t, "102", depth[0].Price.String())
	assert.Equal(t, "105", depth[1].Price.String())
}

func TestSideQueue_EqualPricesAcrossScalesShareLevel(t *testing.T) {
	q := newBidQueue()

	// "100" and "100.0" are distinct Decimal representations of one price;
	// levels are resolved through the comparator, so they must coalesce.
	q.insert(newTestSlot("b-1", Buy, "100", 5))
	q.insert(newTestSlot("b-2", Buy, "100.0", 3))

	require.Equal(t, int64(1), q.depthCount())
	require.Equal(t, int64(2), q.orderCount())

	level := q.bestLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(8), level.totalQuantity)
	assert.Equal(t, int64(2), level.count)
	assert.Equal(t, "b-1", level.head.ID, "arrival order survives the scale difference")
	assert.Equal(t, "b-2", level.tail.ID)
}

func TestSideQueue_FIFOWithinLevel(t *testing.T) {
	q := newBidQueue()

	first := newTestSlot("b-1", Buy, "100", 1)
	second := newTestSlot("b-2", Buy, "100", 2)
	third := newTestSlot("b-3", Buy, "100", 3)
	q.insert(first)
	q.insert(second)
	q.insert(third)

	require.Equal(t, int64(1), q.depthCount(), "same price shares one level")

	level := q.bestLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(6), level.totalQuantity)
	assert.Equal(t, int64(3), level.count)

	assert.Same(t, first, level.head)
	assert.Same(t, second, level.head.next)
	assert.Same(t, third, level.tail)
}

func TestSideQueue_UnlinkMaintainsLevel(t *testing.T) {
	q := newBidQueue()

	first := newTestSlot("b-1", Buy, "100", 1)
	second := newTestSlot("b-2", Buy, "100", 2)
	third := newTestSlot("b-3", Buy, "100", 3)
	q.insert(first)
	q.insert(second)
	q.insert(third)

	// Unlink from the middle keeps head and tail intact.
	q.unlink(second)
	level := q.bestLevel()
	require.NotNil(t, level)
	assert.Same(t, first, level.head)
	assert.Same(t, third, level.head.next)
	assert.Same(t, third, level.tail)
	assert.Equal(t, int64(4), level.totalQuantity)
	assert.Equal(t, int64(2), q.orderCount())

	// Removing the rest drops the level entirely.
	q.unlink(first)
	q.unlink(third)
	assert.Nil(t, q.bestLevel())
	assert.Equal(t, int64(0), q.depthCount())
	assert.Equal(t, int64(0), q.orderCount())
}

func TestSideQueue_ReduceAdjustsAggregate(t *testing.T) {
	q := newAskQueue()

	slot := newTestSlot("a-1", Sell, "100", 10)
	q.insert(slot)

	slot.Quantity -= 4
	q.reduce(slot.Price, 4)

	level := q.bestLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(6), level.totalQuantity)

	depth := q.depth(1)
	require.Len(t, depth, 1)
	assert.Equal(t, int64(6), depth[0].Quantity)
}
