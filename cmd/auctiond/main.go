// Package main provides the auction daemon: the HTTP API, the websocket
// event feed and the background sweeper that finalizes expired auctions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dutch-auction-lab/internal/api"
	"dutch-auction-lab/internal/registry"
	"dutch-auction-lab/internal/scheduler"
	"dutch-auction-lab/internal/storage"
	"dutch-auction-lab/internal/storage/memory"
	"dutch-auction-lab/internal/storage/migrations"
	pgstore "dutch-auction-lab/internal/storage/postgres"
	"dutch-auction-lab/internal/treasury"
)

// allStores holds the audit-trail storage implementations.
type allStores struct {
	auctions    storage.AuctionStore
	bids        storage.BidEventStore
	settlements storage.SettlementStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", ":8080", "HTTP API listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	sweepInterval := flag.Duration("sweep-interval", 5*time.Second, "Auction finalization sweep interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[auctiond] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Wire the registry: shared treasury, websocket hub as event sink.
	hub := api.NewHub()
	reg := registry.New(logger, treasury.NewTreasury(), hub,
		stores.auctions, stores.bids, stores.settlements)

	sweeper := scheduler.New(scheduler.Options{
		Registry: reg,
		Interval: *sweepInterval,
		Logger:   log.New(os.Stdout, "[sweeper] ", log.LstdFlags),
	})

	server := api.New(api.Options{
		Registry:   reg,
		Hub:        hub,
		ListenAddr: *listenAddr,
		Logger:     logger,
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// Run the sweeper in the background and block on the HTTP server so
	// graceful shutdown finishes before the process exits.
	go func() {
		if err := sweeper.Run(ctx); err != nil && err != context.Canceled {
			logger.Fatalf("Sweeper error: %v", err)
		}
	}()

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the audit-trail stores and runs migrations.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			auctions:    memory.NewAuctionStore(),
			bids:        memory.NewBidEventStore(),
			settlements: memory.NewSettlementStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	stores := &allStores{
		auctions:    pgstore.NewAuctionStore(pool),
		bids:        pgstore.NewBidEventStore(pool),
		settlements: pgstore.NewSettlementStore(pool),
	}
	return stores, pool.Close, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
