package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidEntry is one funded commitment in the bid ledger. Entries are assigned
// a strictly increasing sequence at append time and are never mutated or
// removed; the ledger is the audit trail. The same bidder may appear in any
// number of entries, which are never merged, so arrival order is preserved.
type BidEntry struct {
	Sequence   uint64
	Bidder     string
	Commitment decimal.Decimal // funds locked in, refundable at settlement
	Timestamp  time.Time
}
