package treasury

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Treasury is an in-memory FundTreasury shared across auctions.
type Treasury struct {
	mu       sync.Mutex
	deposits decimal.Decimal            // total funds in custody
	pending  map[string]decimal.Decimal // unclaimed payout balances
}

// NewTreasury creates an empty treasury.
func NewTreasury() *Treasury {
	return &Treasury{
		deposits: decimal.Zero,
		pending:  make(map[string]decimal.Decimal),
	}
}

// RecordDeposit notes funds locked in with an accepted bid.
func (t *Treasury) RecordDeposit(bidder string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("deposit for %s must be positive, got %s", bidder, amount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deposits = t.deposits.Add(amount)
	return nil
}

// SchedulePayout credits a pending withdrawal balance. Zero amounts are a
// no-op so settlement can instruct uniformly over all recipients.
func (t *Treasury) SchedulePayout(recipient string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("payout for %s must not be negative, got %s", recipient, amount)
	}
	if amount.IsZero() {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[recipient] = t.pending[recipient].Add(amount)
	return nil
}

// Withdraw claims and zeroes the recipient's pending balance. Repeat calls
// after the balance reaches zero are a no-op, not an error.
func (t *Treasury) Withdraw(recipient string) (decimal.Decimal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	amount, ok := t.pending[recipient]
	if !ok || amount.IsZero() {
		return decimal.Zero, nil
	}
	delete(t.pending, recipient)
	t.deposits = t.deposits.Sub(amount)
	return amount, nil
}

// Pending reports the recipient's unclaimed balance.
func (t *Treasury) Pending(recipient string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[recipient]
}

// Deposits reports total funds in custody.
func (t *Treasury) Deposits() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deposits
}

var _ FundTreasury = (*Treasury)(nil)

// AssetLedger is an in-memory TokenLedger for one auction's token.
type AssetLedger struct {
	mu       sync.Mutex
	symbol   string
	held     int64 // units still held by the auction
	burned   int64
	balances map[string]int64
}

// NewAssetLedger mints the full supply into the auction's holding.
func NewAssetLedger(symbol string, supply int64) *AssetLedger {
	return &AssetLedger{
		symbol:   symbol,
		held:     supply,
		balances: make(map[string]int64),
	}
}

// Burn destroys unsold units held by the auction.
func (l *AssetLedger) Burn(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("burn %s: amount must not be negative, got %d", l.symbol, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.held {
		return fmt.Errorf("burn %s: %d exceeds held %d", l.symbol, amount, l.held)
	}
	l.held -= amount
	l.burned += amount
	return nil
}

// CreditAllocation moves units from the auction's holding to a bidder.
func (l *AssetLedger) CreditAllocation(bidder string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %s: amount must not be negative, got %d", l.symbol, amount)
	}
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.held {
		return fmt.Errorf("credit %s: %d exceeds held %d", l.symbol, amount, l.held)
	}
	l.held -= amount
	l.balances[bidder] += amount
	return nil
}

// BalanceOf reports a bidder's credited units.
func (l *AssetLedger) BalanceOf(bidder string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[bidder]
}

// Held reports units still held by the auction.
func (l *AssetLedger) Held() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Burned reports total destroyed units.
func (l *AssetLedger) Burned() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.burned
}

var _ TokenLedger = (*AssetLedger)(nil)
