// Package treasury provides fund custody and the asset token ledger the
// auction engine instructs at settlement. Payouts are pull-based: the
// engine schedules balances and recipients claim them via Withdraw, so no
// recipient code runs while settlement state is being committed.
package treasury

import "github.com/shopspring/decimal"

// FundTreasury is the fund-custody collaborator.
type FundTreasury interface {
	// RecordDeposit notes funds locked in with an accepted bid.
	RecordDeposit(bidder string, amount decimal.Decimal) error

	// SchedulePayout credits a pending withdrawal balance for the recipient.
	SchedulePayout(recipient string, amount decimal.Decimal) error

	// Withdraw claims and zeroes the recipient's pending balance. Calling it
	// with nothing pending returns zero and no error.
	Withdraw(recipient string) (decimal.Decimal, error)

	// Pending reports the recipient's unclaimed balance.
	Pending(recipient string) decimal.Decimal
}

// TokenLedger is the asset-ledger collaborator for one auction's token.
// The full supply is minted to the auction at creation and either credited
// to bidders or burned at settlement.
type TokenLedger interface {
	// Burn destroys unsold units held by the auction.
	Burn(amount int64) error

	// CreditAllocation moves units from the auction's holding to a bidder.
	CreditAllocation(bidder string, amount int64) error

	// BalanceOf reports a bidder's credited units.
	BalanceOf(bidder string) int64

	// Held reports units still held by the auction.
	Held() int64
}
