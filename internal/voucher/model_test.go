package voucher

import (
	"testing"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

func TestActivityNetOnNaturalSide(t *testing.T) {
	act := LedgerActivity{
		Opening:     dec("1000"),
		OpeningSide: ledgers.SideDr,
		NaturalSide: ledgers.SideDr,
		Debit:       dec("500"),
		Credit:      dec("200"),
	}
	if got := act.Net(); !got.Equal(dec("1300")) {
		t.Fatalf("expected net 1300, got %s", got)
	}
	b := act.Balance()
	if !b.Amount.Equal(dec("1300")) || b.Side != ledgers.SideDr {
		t.Fatalf("expected 1300 Dr, got %s %s", b.Amount, b.Side)
	}
}

func TestActivityOpeningOnOppositeSide(t *testing.T) {
	// A creditor ledger opened with a debit (advance paid to supplier).
	act := LedgerActivity{
		Opening:     dec("300"),
		OpeningSide: ledgers.SideDr,
		NaturalSide: ledgers.SideCr,
		Credit:      dec("1000"),
	}
	if got := act.Net(); !got.Equal(dec("700")) {
		t.Fatalf("expected net 700, got %s", got)
	}
}

func TestActivityBalanceFlipsSideWhenNegative(t *testing.T) {
	act := LedgerActivity{
		NaturalSide: ledgers.SideDr,
		Credit:      dec("250"),
	}
	b := act.Balance()
	if !b.Amount.Equal(dec("250")) || b.Side != ledgers.SideCr {
		t.Fatalf("expected 250 Cr, got %s %s", b.Amount, b.Side)
	}
}

func TestActivityZeroBalanceStaysNatural(t *testing.T) {
	act := LedgerActivity{NaturalSide: ledgers.SideCr}
	b := act.Balance()
	if !b.Amount.IsZero() || b.Side != ledgers.SideCr {
		t.Fatalf("expected 0 Cr, got %s %s", b.Amount, b.Side)
	}
}

func TestNaturalSideMapping(t *testing.T) {
	cases := map[groups.GroupType]ledgers.Side{
		groups.GroupTypeAsset:     ledgers.SideDr,
		groups.GroupTypeExpense:   ledgers.SideDr,
		groups.GroupTypeLiability: ledgers.SideCr,
		groups.GroupTypeIncome:    ledgers.SideCr,
		groups.GroupTypeEquity:    ledgers.SideCr,
	}
	for groupType, want := range cases {
		if got := ledgers.NaturalSide(groupType); got != want {
			t.Fatalf("%s: expected %s, got %s", groupType, want, got)
		}
	}
}
