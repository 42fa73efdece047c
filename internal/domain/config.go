package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AuctionConfig holds the immutable parameters of a single auction round.
// Fields never change after construction; Validate is called once by the
// registry before any auction state exists.
type AuctionConfig struct {
	Creator string // proceeds payee
	Symbol  string // asset ticker
	Name    string // asset display name

	Supply        int64           // fixed supply in smallest asset units
	StartPrice    decimal.Decimal // funds per asset unit at StartTime
	ReservedPrice decimal.Decimal // price floor reached at expiry

	StartTime time.Time
	Duration  time.Duration
}

// Validate checks construction-time invariants. All violations are reported
// as ErrInvalidConfig.
func (c AuctionConfig) Validate() error {
	if c.Creator == "" {
		return fmt.Errorf("%w: creator is required", ErrInvalidConfig)
	}
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	if c.Supply <= 0 {
		return fmt.Errorf("%w: supply must be positive, got %d", ErrInvalidConfig, c.Supply)
	}
	if !c.StartPrice.IsPositive() {
		return fmt.Errorf("%w: start price must be positive, got %s", ErrInvalidConfig, c.StartPrice)
	}
	if !c.ReservedPrice.IsPositive() {
		return fmt.Errorf("%w: reserved price must be positive, got %s", ErrInvalidConfig, c.ReservedPrice)
	}
	if c.ReservedPrice.GreaterThanOrEqual(c.StartPrice) {
		return fmt.Errorf("%w: reserved price %s must be below start price %s",
			ErrInvalidConfig, c.ReservedPrice, c.StartPrice)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidConfig, c.Duration)
	}
	return nil
}

// EndTime returns the moment the bidding window expires.
func (c AuctionConfig) EndTime() time.Time {
	return c.StartTime.Add(c.Duration)
}
