package domain

import "errors"

// Engine errors. All validation errors are synchronous and leave state
// unchanged; callers match with errors.Is.
var (
	// ErrInvalidConfig is returned when an auction configuration violates a
	// construction-time invariant. No auction state exists after this error.
	ErrInvalidConfig = errors.New("invalid auction config")

	// ErrZeroAmount is returned for a bid with a non-positive commitment.
	ErrZeroAmount = errors.New("bid amount must be positive")

	// ErrAuctionNotOpen is returned for a bid placed after the auction ended.
	ErrAuctionNotOpen = errors.New("auction is not open")

	// ErrNotEnded is returned when settlement is requested while the auction
	// is still open.
	ErrNotEnded = errors.New("auction has not ended")

	// ErrAlreadySettled is returned when settlement is requested a second
	// time. The stored clearing result is unchanged.
	ErrAlreadySettled = errors.New("auction already settled")

	// ErrTransferFailed wraps treasury-side payout failures. Settlement state
	// is already committed when this is reported; the affected recipient
	// retries via withdraw.
	ErrTransferFailed = errors.New("transfer failed")
)
