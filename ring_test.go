package match

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quagmt/udecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing_Capacity(t *testing.T) {
	for _, capacity := range []int64{0, -1, 3, 6, 100, 1000} {
		_, err := NewRing(capacity)
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}

	for _, capacity := range []int64{1, 2, 16, 1024} {
		r, err := NewRing(capacity)
		require.NoError(t, err)
		assert.Equal(t, capacity, r.Capacity())
	}
}

func TestRing_FIFOOrder(t *testing.T) {
	r, err := NewRing(16)
	require.NoError(t, err)

	price := udecimal.MustParse("100")
	for i := 0; i < 10; i++ {
		slot := r.Claim()
		slot.Write(fmt.Sprintf("ord-%d", i), Buy, price, 1)
	}

	for i := 0; i < 10; i++ {
		slot := r.TryPoll()
		require.NotNil(t, slot, "slot %d should be ready", i)
		assert.Equal(t, fmt.Sprintf("ord-%d", i), slot.ID)
		slot.Clear()
	}

	assert.Nil(t, r.TryPoll())
}

func TestRing_ClaimWithoutWriteIsNotVisible(t *testing.T) {
	r, err := NewRing(8)
	require.NoError(t, err)

	// A claimed slot is not published until Write sets the ready flag.
	slot := r.Claim()
	assert.Nil(t, r.TryPoll())

	slot.Write("ord-1", Buy, udecimal.MustParse("100"), 1)
	polled := r.TryPoll()
	require.NotNil(t, polled)
	assert.Equal(t, "ord-1", polled.ID)
}

func TestRing_SlotReuseRoundTrip(t *testing.T) {
	r, err := NewRing(4)
	require.NoError(t, err)

	price := udecimal.MustParse("100")

	first := r.Claim()
	first.Write("ord-0", Buy, price, 1)

	polled := r.TryPoll()
	require.Same(t, first, polled)
	polled.Clear()
	assert.False(t, polled.Ready())

	// Fill the remaining slots and drain so the ring wraps back around.
	for i := 1; i < 4; i++ {
		r.Claim().Write(fmt.Sprintf("ord-%d", i), Buy, price, 1)
	}
	for i := 1; i < 4; i++ {
		slot := r.TryPoll()
		require.NotNil(t, slot)
		slot.Clear()
	}

	// The next claim lands on the original index with stale fields and
	// ready still false until the next Write.
	reused := r.Claim()
	assert.Same(t, first, reused)
	assert.False(t, reused.Ready())
	assert.Equal(t, "ord-0", reused.ID)
	assert.Nil(t, r.TryPoll())

	reused.Write("ord-4", Sell, price, 2)
	polled = r.TryPoll()
	require.Same(t, reused, polled)
	assert.Equal(t, "ord-4", polled.ID)
	assert.Equal(t, Sell, polled.Side)
}

func TestRing_InterleavedClaimPoll(t *testing.T) {
	r, err := NewRing(8)
	require.NoError(t, err)

	price := udecimal.MustParse("100")
	next := 0

	// Repeatedly claim fewer than capacity slots ahead of polling; the ring
	// must hand every order back in claim order across wraparounds.
	var got []string
	for round := 0; round < 10; round++ {
		for i := 0; i < 5; i++ {
			r.Claim().Write(fmt.Sprintf("ord-%d", next), Buy, price, 1)
			next++
		}
		for i := 0; i < 5; i++ {
			slot := r.TryPoll()
			require.NotNil(t, slot)
			got = append(got, slot.ID)
			slot.Clear()
		}
	}

	require.Len(t, got, 50)
	for i, id := range got {
		assert.Equal(t, fmt.Sprintf("ord-%d", i), id)
	}
}

func TestRing_ConcurrentProducerConsumer(t *testing.T) {
	const total = 50_000

	r, err := NewRing(1024)
	require.NoError(t, err)

	price := udecimal.MustParse("100")

	// The ring itself has no backpressure, so the producer throttles on the
	// consumer's progress to stay under capacity.
	var consumed atomic.Int64
	go func() {
		for i := int64(0); i < total; i++ {
			for i-consumed.Load() >= r.Capacity()-1 {
				time.Sleep(time.Microsecond)
			}
			r.Claim().Write(strconv.FormatInt(i, 10), Buy, price, 1)
		}
	}()

	deadline := time.Now().Add(10 * time.Second)
	for i := int64(0); i < total; {
		slot := r.TryPoll()
		if slot == nil {
			if time.Now().After(deadline) {
				t.Fatalf("timed out after %d orders", i)
			}
			continue
		}

		require.Equal(t, strconv.FormatInt(i, 10), slot.ID, "orders must arrive in claim order")
		slot.Clear()
		i++
		consumed.Store(i)
	}
}
