package match

import (
	"slices"
	"sync/atomic"
	"time"
)

// Metrics collects per-order processing latency for the lifetime of one
// engine instance. The sample buffer is pre-allocated and written only by the
// consumer loop; the processed counter is atomic so a producer-side harness
// can observe progress without touching the samples. Reset only by
// constructing a new engine.
type Metrics struct {
	samples   []int64 // nanoseconds
	count     int
	processed atomic.Int64
}

// NewMetrics creates a metrics store holding up to capacity latency samples.
func NewMetrics(capacity int) *Metrics {
	return &Metrics{
		samples: make([]int64, capacity),
	}
}

// Record appends one latency sample and increments the processed count.
// Samples beyond capacity are silently dropped.
func (m *Metrics) Record(latency time.Duration) {
	if m.count < len(m.samples) {
		m.samples[m.count] = int64(latency)
		m.count++
	}
	m.processed.Add(1)
}

// Processed returns the number of orders processed so far.
func (m *Metrics) Processed() int64 {
	return m.processed.Load()
}

// Samples returns a copy of the recorded latency samples in nanoseconds.
// Call only after the consumer loop has stopped.
func (m *Metrics) Samples() []int64 {
	out := make([]int64, m.count)
	copy(out, m.samples[:m.count])
	return out
}

// LatencyReport summarizes the collected latency distribution.
type LatencyReport struct {
	Count int
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// Report sorts a copy of the samples and derives percentile statistics.
// Call only after the consumer loop has stopped.
func (m *Metrics) Report() LatencyReport {
	if m.count == 0 {
		return LatencyReport{}
	}

	sorted := make([]int64, m.count)
	copy(sorted, m.samples[:m.count])
	slices.Sort(sorted)

	var sum int64
	for _, s := range sorted {
		sum += s
	}

	return LatencyReport{
		Count: m.count,
		Mean:  time.Duration(sum / int64(m.count)),
		P50:   time.Duration(sorted[m.count/2]),
		P99:   time.Duration(sorted[m.count*99/100]),
		Max:   time.Duration(sorted[m.count-1]),
	}
}
