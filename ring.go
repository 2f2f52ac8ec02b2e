package match

import "sync/atomic"

// Ring is a fixed-size single-producer / single-consumer handoff of
// pre-allocated OrderSlots. The producer claims slots with an atomic
// fetch-and-increment and publishes them through each slot's ready flag; the
// consumer polls its own plain sequence counter and only advances past slots
// it has observed as ready. No locks, no allocation after construction.
//
// The ring does not backpressure the producer: claiming capacity or more
// slots ahead of the consumer overwrites unread orders. Callers must bound
// the number of outstanding claims themselves (the benchmark harness sizes
// the ring to its iteration count for this reason).
type Ring struct {
	// Cache line padding to avoid false sharing between the two sequences.
	_           [56]byte
	producerSeq atomic.Int64
	_           [56]byte
	consumerSeq int64 // owned by the consumer goroutine, never shared
	_           [56]byte

	slots []OrderSlot
	mask  int64
}

// NewRing creates a ring of capacity pre-allocated slots. Capacity must be a
// power of 2 so slot indexing can use a bitmask instead of modulo.
func NewRing(capacity int64) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrInvalidCapacity
	}

	r := &Ring{
		slots: make([]OrderSlot, capacity),
		mask:  capacity - 1,
	}
	r.producerSeq.Store(-1)

	return r, nil
}

// Claim advances the producer sequence and returns the slot at the claimed
// index for in-place writing. Wait-free: the atomic add already makes Claim
// safe for multiple producers, though publication per slot is not.
func (r *Ring) Claim() *OrderSlot {
	seq := r.producerSeq.Add(1)
	return &r.slots[seq&r.mask]
}

// TryPoll returns the next published slot, or nil when the slot at the
// consumer sequence has not been published yet. Consumer-only; never blocks.
func (r *Ring) TryPoll() *OrderSlot {
	slot := &r.slots[r.consumerSeq&r.mask]
	if !slot.ready.Load() {
		return nil
	}

	r.consumerSeq++
	return slot
}

// Capacity returns the number of slots in the ring.
func (r *Ring) Capacity() int64 {
	return r.mask + 1
}
