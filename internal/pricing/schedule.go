// Package pricing implements the linear Dutch price decay.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/numeric"
)

// PriceScale is the number of decimal places prices are quantized to.
// Matches the 18-decimal base units the asset is denominated in.
const PriceScale = 18

// Schedule maps elapsed time to the current price:
//
//	price(t) = startPrice - (startPrice - reservedPrice) * elapsed / duration
//
// with elapsed clamped to [0, duration]. The decay term is rounded up at
// PriceScale so the price itself is floored; rounding consistently in the
// buyer's favor avoids oscillation around the true curve.
type Schedule struct {
	start     decimal.Decimal
	reserved  decimal.Decimal
	startTime time.Time
	duration  time.Duration
}

// NewSchedule builds the schedule for a validated config.
func NewSchedule(cfg domain.AuctionConfig) *Schedule {
	return &Schedule{
		start:     cfg.StartPrice,
		reserved:  cfg.ReservedPrice,
		startTime: cfg.StartTime,
		duration:  cfg.Duration,
	}
}

// PriceAt returns the current price at the given time. Pure and
// non-increasing in now; equals the start price before the window opens and
// the reserved price from expiry onward.
func (s *Schedule) PriceAt(now time.Time) decimal.Decimal {
	elapsed := now.Sub(s.startTime)
	if elapsed <= 0 {
		return s.start
	}
	if elapsed >= s.duration {
		return s.reserved
	}

	span := s.start.Sub(s.reserved)
	num := span.Mul(decimal.NewFromInt(elapsed.Nanoseconds()))
	den := decimal.NewFromInt(s.duration.Nanoseconds())
	decay := numeric.CeilQuoScaled(num, den, PriceScale)

	price := s.start.Sub(decay)
	if price.LessThan(s.reserved) {
		return s.reserved
	}
	return price
}
