package treasury

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTreasury_WithdrawClaimsOnce(t *testing.T) {
	tr := NewTreasury()

	if err := tr.RecordDeposit("alice", decimal.NewFromInt(400)); err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}
	if err := tr.SchedulePayout("alice", decimal.NewFromInt(50)); err != nil {
		t.Fatalf("SchedulePayout failed: %v", err)
	}

	got, err := tr.Withdraw("alice")
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Withdraw = %s, want 50", got)
	}

	// Repeated withdraw after zero balance is a no-op, not an error.
	got, err = tr.Withdraw("alice")
	if err != nil {
		t.Fatalf("second Withdraw failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("second Withdraw = %s, want 0", got)
	}
}

func TestTreasury_WithdrawUnknownRecipient(t *testing.T) {
	tr := NewTreasury()
	got, err := tr.Withdraw("nobody")
	if err != nil || !got.IsZero() {
		t.Errorf("Withdraw unknown = %s, %v; want 0, nil", got, err)
	}
}

func TestTreasury_PayoutsAccumulate(t *testing.T) {
	tr := NewTreasury()
	_ = tr.SchedulePayout("bob", decimal.NewFromInt(10))
	_ = tr.SchedulePayout("bob", decimal.NewFromInt(15))

	if !tr.Pending("bob").Equal(decimal.NewFromInt(25)) {
		t.Errorf("Pending = %s, want 25", tr.Pending("bob"))
	}
}

func TestTreasury_ZeroPayoutIsNoop(t *testing.T) {
	tr := NewTreasury()
	if err := tr.SchedulePayout("bob", decimal.Zero); err != nil {
		t.Fatalf("zero payout failed: %v", err)
	}
	if !tr.Pending("bob").IsZero() {
		t.Errorf("zero payout created pending balance %s", tr.Pending("bob"))
	}
}

func TestAssetLedger_CreditAndBurnConserveSupply(t *testing.T) {
	l := NewAssetLedger("TT", 1000)

	if err := l.CreditAllocation("alice", 800); err != nil {
		t.Fatalf("CreditAllocation failed: %v", err)
	}
	if err := l.CreditAllocation("bob", 150); err != nil {
		t.Fatalf("CreditAllocation failed: %v", err)
	}
	if err := l.Burn(50); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	total := l.BalanceOf("alice") + l.BalanceOf("bob") + l.Burned() + l.Held()
	if total != 1000 {
		t.Errorf("supply not conserved: %d", total)
	}
	if l.Held() != 0 {
		t.Errorf("Held = %d, want 0", l.Held())
	}
}

func TestAssetLedger_RejectsOverdraw(t *testing.T) {
	l := NewAssetLedger("TT", 100)

	if err := l.CreditAllocation("alice", 101); err == nil {
		t.Error("expected error crediting more than held")
	}
	if err := l.Burn(101); err == nil {
		t.Error("expected error burning more than held")
	}
	if l.Held() != 100 {
		t.Errorf("failed operations must not change holdings, held = %d", l.Held())
	}
}
