package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	match "github.com/fernwood/trading-engine"
	"github.com/fernwood/trading-engine/gateway"
)

func main() {
	var (
		addr        = flag.String("addr", ":9090", "gateway listen address")
		ringSize    = flag.Int64("ring", 1024, "slot ring capacity (power of 2)")
		metricsCap  = flag.Int("metrics", 1_000_000, "latency sample capacity")
		waitMode    = flag.String("wait", "yield", "consumer wait strategy: spin or yield")
		depthEvery  = flag.Duration("depth-interval", 10*time.Second, "top-of-book log interval (0 disables)")
		stopTimeout = flag.Duration("stop-timeout", 5*time.Second, "graceful shutdown timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	match.SetLogger(logger)

	wait := match.WaitYield
	if *waitMode == "spin" {
		wait = match.WaitSpin
	}

	depthView := match.NewAggregatedBook()
	publisher := match.NewFanoutEventPublisher(match.NewSlogEventPublisher(), depthView)

	engine, err := match.NewEngine(*ringSize,
		match.WithEventPublisher(publisher),
		match.WithMetricsCapacity(*metricsCap),
		match.WithWaitStrategy(wait),
	)
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	go engine.Run()

	server := gateway.NewServer(*addr, engine)
	if err := server.Listen(); err != nil {
		logger.Error("failed to bind gateway", "addr", *addr, "error", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Serve(); err != nil {
			logger.Error("gateway stopped", "error", err)
		}
	}()

	logger.Info("system ready", "addr", server.Addr().String(), "ring", *ringSize, "wait", *waitMode)

	stopDepthLog := make(chan struct{})
	if *depthEvery > 0 {
		go func() {
			ticker := time.NewTicker(*depthEvery)
			defer ticker.Stop()
			for {
				select {
				case <-stopDepthLog:
					return
				case <-ticker.C:
					logTopOfBook(logger, depthView, engine.Metrics())
				}
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	close(stopDepthLog)
	_ = server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *stopTimeout)
	defer cancel()
	if err := engine.Stop(ctx); err != nil {
		logger.Error("engine shutdown timed out", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped", "processed", engine.Metrics().Processed())
}

func logTopOfBook(logger *slog.Logger, depthView *match.AggregatedBook, metrics *match.Metrics) {
	attrs := []any{"processed", metrics.Processed()}

	if price, qty, ok := depthView.BestBid(); ok {
		attrs = append(attrs, "best_bid", price.String(), "bid_quantity", qty)
	}
	if price, qty, ok := depthView.BestAsk(); ok {
		attrs = append(attrs, "best_ask", price.String(), "ask_quantity", qty)
	}

	logger.Info("top of book", attrs...)
}
