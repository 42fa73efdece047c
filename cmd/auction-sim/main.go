// Package main provides an offline auction simulator: it runs one complete
// auction round against a deterministic bid script and prints the clearing
// result, for eyeballing price schedules before opening a real round.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/registry"
	"dutch-auction-lab/internal/storage/memory"
	"dutch-auction-lab/internal/treasury"
)

func main() {
	// Parse flags
	supply := flag.Int64("supply", 1000, "Fixed asset supply in units")
	startPrice := flag.String("start-price", "1.0", "Price per unit at open")
	reservedPrice := flag.String("reserved-price", "0.5", "Price floor reached at expiry")
	duration := flag.Duration("duration", 20*time.Minute, "Bidding window length")
	bidders := flag.Int("bidders", 10, "Number of scripted bidders")
	maxBid := flag.Float64("max-bid", 200, "Upper bound of a scripted commitment")
	seed := flag.Int64("seed", 1, "Bid script random seed")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[auction-sim] ", log.LstdFlags)

	start, err := decimal.NewFromString(*startPrice)
	if err != nil {
		logger.Fatalf("Invalid --start-price: %v", err)
	}
	reserved, err := decimal.NewFromString(*reservedPrice)
	if err != nil {
		logger.Fatalf("Invalid --reserved-price: %v", err)
	}

	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)

	reg := registry.New(logger, treasury.NewTreasury(), nil,
		memory.NewAuctionStore(), memory.NewBidEventStore(), memory.NewSettlementStore())

	id, err := reg.Create(ctx, domain.AuctionConfig{
		Creator:       "sim-creator",
		Symbol:        "SIM",
		Name:          "Simulated Token",
		Supply:        *supply,
		StartPrice:    start,
		ReservedPrice: reserved,
		StartTime:     t0,
		Duration:      *duration,
	}, t0)
	if err != nil {
		logger.Fatalf("Failed to create auction: %v", err)
	}

	// Scripted bids spread across the window. The round may end early once
	// demand covers supply; later bids are simply rejected.
	rng := rand.New(rand.NewSource(*seed))
	accepted, rejected := 0, 0
	for i := 0; i < *bidders; i++ {
		at := t0.Add(time.Duration(float64(*duration) * float64(i+1) / float64(*bidders+1)))
		amount := decimal.NewFromFloat(1 + rng.Float64()*(*maxBid-1)).Round(2)
		bidder := fmt.Sprintf("bidder-%02d", i+1)

		if _, err := reg.PlaceBid(ctx, id, bidder, amount, at); err != nil {
			rejected++
			continue
		}
		accepted++

		st, _ := reg.Status(id, at)
		logger.Printf("t+%-8s %s commits %-8s price=%-10s total=%s",
			at.Sub(t0).Truncate(time.Second), bidder, amount, st.CurrentPrice, st.TotalCommitment)
	}

	result, err := reg.Settle(ctx, id, t0.Add(*duration))
	if result == nil {
		logger.Fatalf("Settlement failed: %v", err)
	}
	if err != nil {
		logger.Printf("Settlement transfers incomplete: %v", err)
	}

	logger.Printf("Round complete: %d bids accepted, %d rejected", accepted, rejected)

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	printResult(id, result)
}

func printResult(id string, result *domain.ClearingResult) {
	fmt.Printf("\nAuction %s\n", id)
	fmt.Printf("Clearing price: %s\n", result.ClearingPrice)
	fmt.Printf("Allocated:      %d units\n", result.TotalAllocated())
	fmt.Printf("Burned:         %d units\n", result.UnsoldBurned)
	fmt.Printf("Proceeds:       %s\n\n", result.Proceeds)

	fmt.Printf("%-12s %10s %14s %14s\n", "BIDDER", "UNITS", "COST", "REFUND")
	for _, out := range result.Outcomes {
		fmt.Printf("%-12s %10d %14s %14s\n", out.Bidder, out.Allocated, out.Cost, out.Refund)
	}
}
