package domain

// AuctionState is the auction lifecycle. Transitions are monotonic:
// Open → Ended → Settled, no state is reachable twice.
type AuctionState int

const (
	StateOpen AuctionState = iota
	StateEnded
	StateSettled
)

// State string constants used by storage and the API.
const (
	StateNameOpen    = "OPEN"
	StateNameEnded   = "ENDED"
	StateNameSettled = "SETTLED"
)

func (s AuctionState) String() string {
	switch s {
	case StateOpen:
		return StateNameOpen
	case StateEnded:
		return StateNameEnded
	case StateSettled:
		return StateNameSettled
	default:
		return "UNKNOWN"
	}
}
