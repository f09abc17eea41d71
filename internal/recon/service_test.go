package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

func entry(amount string, side ledgers.Side, allocated *time.Time) voucher.StatementRow {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return voucher.StatementRow{Entry: voucher.Entry{Amount: d, Side: side, BankAllocationDate: allocated}}
}

func TestComputeTotals(t *testing.T) {
	allocated := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	totals := ComputeTotals([]voucher.StatementRow{
		entry("1000", ledgers.SideDr, &allocated),
		entry("1000", ledgers.SideDr, nil),
		entry("1000", ledgers.SideDr, nil),
	})
	if !totals.CompanyBalance.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("company balance = %s, want 3000", totals.CompanyBalance)
	}
	if !totals.AmountsNotReflected.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("amounts not reflected = %s, want 2000", totals.AmountsNotReflected)
	}
	if !totals.BankBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("bank balance = %s, want 1000", totals.BankBalance)
	}
}

func TestComputeTotalsCreditsSubtract(t *testing.T) {
	allocated := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	totals := ComputeTotals([]voucher.StatementRow{
		entry("5000", ledgers.SideDr, &allocated),
		entry("1200", ledgers.SideCr, nil),
	})
	if !totals.CompanyBalance.Equal(decimal.NewFromInt(3800)) {
		t.Fatalf("company balance = %s, want 3800", totals.CompanyBalance)
	}
	if !totals.AmountsNotReflected.Equal(decimal.NewFromInt(-1200)) {
		t.Fatalf("amounts not reflected = %s, want -1200", totals.AmountsNotReflected)
	}
	if !totals.BankBalance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("bank balance = %s, want 5000", totals.BankBalance)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)
	if !totals.CompanyBalance.IsZero() || !totals.AmountsNotReflected.IsZero() || !totals.BankBalance.IsZero() {
		t.Fatalf("empty statement must yield zero totals, got %+v", totals)
	}
}
