// Command bench floods the matching engine with alternating BUY/SELL limit
// orders through the slot ring and reports throughput and the per-order
// processing latency distribution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/quagmt/udecimal"
	"github.com/rs/xid"

	match "github.com/fernwood/trading-engine"
)

func main() {
	var (
		iterations = flag.Int("n", 1_000_000, "number of orders to submit")
		ringSize   = flag.Int64("ring", 1<<20, "slot ring capacity (power of 2, must be >= n)")
	)
	flag.Parse()

	if int64(*iterations) > *ringSize {
		// The ring has no backpressure; a flood larger than the ring would
		// overwrite unread slots.
		fmt.Fprintf(os.Stderr, "n (%d) must not exceed ring capacity (%d)\n", *iterations, *ringSize)
		os.Exit(1)
	}

	fmt.Println("initializing engine...")
	engine, err := match.NewEngine(*ringSize,
		match.WithEventPublisher(match.NewDiscardEventPublisher()),
		match.WithMetricsCapacity(*iterations),
		match.WithWaitStrategy(match.WaitSpin),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	go engine.Run()

	// Pre-parse the five price points so the submit loop does no decimal work.
	prices := make([]udecimal.Decimal, 5)
	for i := range prices {
		prices[i] = udecimal.MustFromInt64(int64(100+i), 0)
	}

	// Pre-mint order IDs to keep ID generation out of the timed section.
	ids := make([]string, *iterations)
	for i := range ids {
		ids[i] = xid.New().String()
	}

	fmt.Printf("starting benchmark for %d orders...\n", *iterations)
	start := time.Now()

	for i := 0; i < *iterations; i++ {
		side := match.Buy
		if i%2 == 1 {
			side = match.Sell
		}
		if _, err := engine.SubmitOrder(ids[i], side, prices[i%5], 10); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Wait for the consumer to catch up.
	for engine.Metrics().Processed() < int64(*iterations) {
		runtime.Gosched()
	}

	elapsed := time.Since(start)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := engine.Stop(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	report := engine.Metrics().Report()
	throughput := float64(*iterations) / elapsed.Seconds()

	fmt.Println("------------------------------------------------")
	fmt.Println("done!")
	fmt.Printf("throughput:      %.0f orders/sec\n", throughput)
	fmt.Printf("average latency: %v\n", report.Mean)
	fmt.Println("------------------------------------------------")
	fmt.Println("latency distribution:")
	fmt.Printf("median (p50): %v\n", report.P50)
	fmt.Printf("99%%    (p99): %v\n", report.P99)
	fmt.Printf("max         : %v\n", report.Max)
	fmt.Println("------------------------------------------------")
}
