package auction

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dutch-auction-lab/internal/domain"
	"dutch-auction-lab/internal/treasury"
)

func TestSettle_NoBidsAtExpiry(t *testing.T) {
	f := newFixture(t, 1000, "1", "0.5")

	result, err := f.auction.Settle(t0.Add(1200 * time.Second))
	require.NoError(t, err)

	assert.True(t, result.ClearingPrice.Equal(dec("0.5")))
	assert.Empty(t, result.Outcomes)
	assert.Equal(t, int64(1000), result.UnsoldBurned)
	assert.True(t, result.Proceeds.IsZero())
	assert.Equal(t, int64(0), f.tokens.Held())
	assert.Equal(t, int64(1000), f.tokens.Burned())
}

func TestSettle_SingleBidCappedAtSupply(t *testing.T) {
	// supply=100, bid 150 at t=0 (price=1): entitlement 150 capped to 100,
	// cost 100, refund 50.
	f := newFixture(t, 100, "1", "0.1")

	_, err := f.auction.PlaceBid("alice", dec("150"), t0)
	require.NoError(t, err)

	result, err := f.auction.Settle(t0)
	require.NoError(t, err)

	assert.True(t, result.ClearingPrice.Equal(dec("1")))
	require.Len(t, result.Outcomes, 1)
	out := result.Outcomes[0]
	assert.Equal(t, int64(100), out.Allocated)
	assert.True(t, out.Cost.Equal(dec("100")))
	assert.True(t, out.Refund.Equal(dec("50")))
	assert.Equal(t, int64(0), result.UnsoldBurned)
	assert.True(t, result.Proceeds.Equal(dec("100")))

	// Treasury instructions follow the result.
	assert.Equal(t, int64(100), f.tokens.BalanceOf("alice"))
	assert.True(t, f.funds.Pending("alice").Equal(dec("50")))
	assert.True(t, f.funds.Pending("creator1").Equal(dec("100")))
}

func TestSettle_ExpiryWithInflatedEntitlements(t *testing.T) {
	// supply=1000: A=400@t=0, B=300@t=600; expiry freezes price 0.5.
	// A: entitlement 800, cost 400, refund 0.
	// B: entitlement 600, capacity 200 left, cost 100, refund 200.
	f := newFixture(t, 1000, "1", "0.5")

	_, err := f.auction.PlaceBid("A", dec("400"), t0)
	require.NoError(t, err)
	_, err = f.auction.PlaceBid("B", dec("300"), t0.Add(600*time.Second))
	require.NoError(t, err)

	result, err := f.auction.Settle(t0.Add(1200 * time.Second))
	require.NoError(t, err)

	assert.True(t, result.ClearingPrice.Equal(dec("0.5")))

	a, ok := result.Outcome("A")
	require.True(t, ok)
	assert.Equal(t, int64(800), a.Allocated)
	assert.True(t, a.Refund.IsZero(), "refund A = %s", a.Refund)

	b, ok := result.Outcome("B")
	require.True(t, ok)
	assert.Equal(t, int64(200), b.Allocated)
	assert.True(t, b.Cost.Equal(dec("100")))
	assert.True(t, b.Refund.Equal(dec("200")))

	assert.Equal(t, int64(0), result.UnsoldBurned)
	assert.True(t, result.Proceeds.Equal(dec("500")))
}

func TestSettle_EarlyEndCapsLastBidder(t *testing.T) {
	// supply=1500: 900@t=0 (price 2), 600@t=600 (price 1.5),
	// 380@t=900 (price 1.25): demand floor(1880/1.25)=1504 >= 1500.
	f := newFixture(t, 1500, "2", "1")

	_, err := f.auction.PlaceBid("b1", dec("900"), t0)
	require.NoError(t, err)
	_, err = f.auction.PlaceBid("b2", dec("600"), t0.Add(600*time.Second))
	require.NoError(t, err)
	_, err = f.auction.PlaceBid("b3", dec("380"), t0.Add(900*time.Second))
	require.NoError(t, err)

	st := f.auction.Status(t0.Add(900 * time.Second))
	require.Equal(t, domain.StateEnded, st.State)
	require.True(t, st.CurrentPrice.Equal(dec("1.25")))

	result, err := f.auction.Settle(t0.Add(901 * time.Second))
	require.NoError(t, err)

	b1, _ := result.Outcome("b1")
	b2, _ := result.Outcome("b2")
	b3, _ := result.Outcome("b3")
	assert.Equal(t, int64(720), b1.Allocated)
	assert.Equal(t, int64(480), b2.Allocated)
	assert.Equal(t, int64(300), b3.Allocated) // entitled to 304, capped
	assert.True(t, b3.Refund.Equal(dec("5")))
	assert.Equal(t, int64(1500), result.TotalAllocated())
	assert.Equal(t, int64(0), result.UnsoldBurned)
}

func TestSettle_WhileOpenFails(t *testing.T) {
	f := newFixture(t, 1000, "1", "0.5")

	_, err := f.auction.Settle(t0.Add(600 * time.Second))
	assert.ErrorIs(t, err, domain.ErrNotEnded)

	st := f.auction.Status(t0.Add(600 * time.Second))
	assert.Equal(t, domain.StateOpen, st.State)
}

func TestSettle_SecondCallFails(t *testing.T) {
	f := newFixture(t, 1000, "1", "0.5")

	_, err := f.auction.PlaceBid("alice", dec("100"), t0)
	require.NoError(t, err)

	first, err := f.auction.Settle(t0.Add(1200 * time.Second))
	require.NoError(t, err)

	_, err = f.auction.Settle(t0.Add(1300 * time.Second))
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	// Stored result unchanged by the rejected call.
	assert.Same(t, first, f.auction.Result())
	assert.Len(t, f.events.ofType(domain.EventTypeSettled), 1)
}

func TestSettle_DemandExactlyEqualsSupply(t *testing.T) {
	// supply=100, bid 100 at t=0 (price 1): zero refund, zero unsold.
	f := newFixture(t, 100, "1", "0.5")

	_, err := f.auction.PlaceBid("alice", dec("100"), t0)
	require.NoError(t, err)

	result, err := f.auction.Settle(t0)
	require.NoError(t, err)

	out := result.Outcomes[0]
	assert.Equal(t, int64(100), out.Allocated)
	assert.True(t, out.Refund.IsZero())
	assert.Equal(t, int64(0), result.UnsoldBurned)
}

func TestSettle_AggregatesRepeatBidders(t *testing.T) {
	f := newFixture(t, 1000, "1", "0.5")

	_, err := f.auction.PlaceBid("alice", dec("100"), t0)
	require.NoError(t, err)
	_, err = f.auction.PlaceBid("bob", dec("50"), t0.Add(time.Second))
	require.NoError(t, err)
	_, err = f.auction.PlaceBid("alice", dec("60"), t0.Add(2*time.Second))
	require.NoError(t, err)

	result, err := f.auction.Settle(t0.Add(1200 * time.Second))
	require.NoError(t, err)

	// One outcome per bidder, first-appearance order.
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "alice", result.Outcomes[0].Bidder)
	assert.Equal(t, "bob", result.Outcomes[1].Bidder)
	assert.Equal(t, int64(320), result.Outcomes[0].Allocated) // (100+60)/0.5
}

// Conservation invariants over randomized configs and bid sequences:
// sum(allocated) + unsoldBurned == supply, and for every bidder
// allocated*clearingPrice + refund == commitment, exactly.
func TestSettle_ConservationInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		supply := rng.Int63n(5000) + 1
		startPrice := decimal.New(rng.Int63n(4000)+100, -2)  // 1.00 .. 41.00
		reservedPrice := decimal.New(rng.Int63n(99)+1, -2)   // 0.01 .. 0.99

		cfg := domain.AuctionConfig{
			Creator:       "creator1",
			Symbol:        "TT",
			Supply:        supply,
			StartPrice:    startPrice,
			ReservedPrice: reservedPrice,
			StartTime:     t0,
			Duration:      1200 * time.Second,
		}
		require.NoError(t, cfg.Validate())

		funds := treasury.NewTreasury()
		tokens := treasury.NewAssetLedger("TT", supply)
		a := New("a", cfg, funds, tokens, nil)

		commitments := make(map[string]decimal.Decimal)
		bidders := []string{"w", "x", "y", "z"}
		for i, n := 0, rng.Intn(8); i < n; i++ {
			bidder := bidders[rng.Intn(len(bidders))]
			amount := decimal.New(rng.Int63n(100_000)+1, -2)
			at := t0.Add(time.Duration(rng.Intn(1200)) * time.Second)
			if _, err := a.PlaceBid(bidder, amount, at); err != nil {
				continue // auction may have ended early
			}
			commitments[bidder] = commitments[bidder].Add(amount)
		}

		result, err := a.Settle(t0.Add(1200 * time.Second))
		require.NoError(t, err, "trial %d", trial)

		var allocated int64
		for _, out := range result.Outcomes {
			allocated += out.Allocated

			entitlement := result.ClearingPrice.Mul(decimal.NewFromInt(out.Allocated))
			total := entitlement.Add(out.Refund)
			require.True(t, total.Equal(commitments[out.Bidder]),
				"trial %d bidder %s: %s*%d + %s != %s",
				trial, out.Bidder, result.ClearingPrice, out.Allocated, out.Refund, commitments[out.Bidder])
			require.True(t, out.Refund.Sign() >= 0, "trial %d: negative refund", trial)
		}
		require.Equal(t, supply, allocated+result.UnsoldBurned, "trial %d", trial)
		require.LessOrEqual(t, allocated, supply, "trial %d", trial)
	}
}

// reentrantTreasury attempts to re-enter the auction from inside payout
// scheduling, imitating a contract-style beneficiary.
type reentrantTreasury struct {
	*treasury.Treasury
	auction **Auction
	seen    []error
}

func (r *reentrantTreasury) SchedulePayout(recipient string, amount decimal.Decimal) error {
	if a := *r.auction; a != nil {
		if _, err := a.Settle(t0.Add(1300 * time.Second)); err != nil {
			r.seen = append(r.seen, err)
		}
		if _, err := a.PlaceBid("mallory", decimal.NewFromInt(1), t0.Add(1300*time.Second)); err != nil {
			r.seen = append(r.seen, err)
		}
	}
	return r.Treasury.SchedulePayout(recipient, amount)
}

func TestSettle_ReentrantPayoutObservesTerminalState(t *testing.T) {
	cfg := domain.AuctionConfig{
		Creator:       "creator1",
		Symbol:        "TT",
		Supply:        100,
		StartPrice:    dec("1"),
		ReservedPrice: dec("0.5"),
		StartTime:     t0,
		Duration:      1200 * time.Second,
	}
	require.NoError(t, cfg.Validate())

	funds := &reentrantTreasury{Treasury: treasury.NewTreasury()}
	tokens := treasury.NewAssetLedger("TT", 100)
	a := New("a", cfg, funds, tokens, nil)
	funds.auction = &a

	_, err := a.PlaceBid("alice", dec("150"), t0)
	require.NoError(t, err)

	result, err := a.Settle(t0)
	require.NoError(t, err)

	// Every reentrant call was rejected against committed terminal state.
	require.NotEmpty(t, funds.seen)
	for _, err := range funds.seen {
		ok := err == domain.ErrAlreadySettled || err == domain.ErrAuctionNotOpen
		assert.True(t, ok, "unexpected reentrant outcome: %v", err)
	}

	// Settlement stands: one allocation, one refund, nothing double-spent.
	assert.Equal(t, int64(100), tokens.BalanceOf("alice"))
	assert.True(t, funds.Pending("alice").Equal(dec("50")))
	assert.Same(t, result, a.Result())
}
