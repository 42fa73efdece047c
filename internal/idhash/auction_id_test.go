package idhash

import "testing"

func TestComputeAuctionID_Deterministic(t *testing.T) {
	a := ComputeAuctionID("creator1", "TT", 1_700_000_000_000_000_000)
	b := ComputeAuctionID("creator1", "TT", 1_700_000_000_000_000_000)

	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
	if a == "" {
		t.Error("empty id")
	}
}

func TestComputeAuctionID_DistinctInputs(t *testing.T) {
	base := ComputeAuctionID("creator1", "TT", 1)

	if ComputeAuctionID("creator2", "TT", 1) == base {
		t.Error("different creators produced the same id")
	}
	if ComputeAuctionID("creator1", "XX", 1) == base {
		t.Error("different symbols produced the same id")
	}
	if ComputeAuctionID("creator1", "TT", 2) == base {
		t.Error("different timestamps produced the same id")
	}
}

// Field separation: moving a character across the delimiter must change
// the hash input.
func TestComputeAuctionID_FieldBoundaries(t *testing.T) {
	if ComputeAuctionID("ab", "c", 1) == ComputeAuctionID("a", "bc", 1) {
		t.Error("field boundary ambiguity")
	}
}
