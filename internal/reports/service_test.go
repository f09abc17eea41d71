package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func row(id int64, name string, groupType groups.GroupType, opening, dr, cr string) activityRow {
	natural := ledgers.NaturalSide(groupType)
	return activityRow{
		LedgerID:   id,
		LedgerName: name,
		GroupName:  string(groupType),
		GroupType:  groupType,
		Activity: voucher.LedgerActivity{
			LedgerID:    id,
			Opening:     dec(opening),
			OpeningSide: natural,
			NaturalSide: natural,
			Debit:       dec(dr),
			Credit:      dec(cr),
		},
	}
}

var asOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func TestTrialBalanceOpeningOnly(t *testing.T) {
	// One asset ledger opened 5000 Dr against equity 5000 Cr and no
	// vouchers posted must produce exactly two balanced rows.
	tb, err := buildTrialBalance(asOf, []activityRow{
		row(1, "Cash", groups.GroupTypeAsset, "5000", "0", "0"),
		row(2, "Capital", groups.GroupTypeEquity, "5000", "0", "0"),
	})
	if err != nil {
		t.Fatalf("buildTrialBalance: %v", err)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(tb.Rows))
	}
	if !tb.TotalDebit.Equal(dec("5000")) || !tb.TotalCredit.Equal(dec("5000")) {
		t.Fatalf("expected 5000/5000, got %s/%s", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.Balanced {
		t.Fatalf("trial balance must report balanced")
	}
}

func TestTrialBalanceSkipsZeroBalances(t *testing.T) {
	tb, err := buildTrialBalance(asOf, []activityRow{
		row(1, "Cash", groups.GroupTypeAsset, "0", "1000", "1000"),
		row(2, "Sales", groups.GroupTypeIncome, "0", "0", "1000"),
		row(3, "Debtors", groups.GroupTypeAsset, "0", "1000", "0"),
	})
	if err != nil {
		t.Fatalf("buildTrialBalance: %v", err)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("zero-balance ledger must be dropped, got %d rows", len(tb.Rows))
	}
}

func TestTrialBalanceRejectsUnclassifiedLedger(t *testing.T) {
	bad := row(1, "Mystery", groups.GroupType("SUSPENSE"), "0", "100", "0")
	if _, err := buildTrialBalance(asOf, []activityRow{bad}); err == nil {
		t.Fatalf("unclassified ledger must fail, not be silently excluded")
	}
}

func TestTrialBalanceContraBalancePresentsOnOppositeSide(t *testing.T) {
	// Bank overdrawn: asset ledger with a credit balance.
	tb, err := buildTrialBalance(asOf, []activityRow{
		row(1, "Bank", groups.GroupTypeAsset, "0", "1000", "1500"),
		row(2, "Rent", groups.GroupTypeExpense, "0", "500", "0"),
	})
	if err != nil {
		t.Fatalf("buildTrialBalance: %v", err)
	}
	if tb.Rows[0].Side != ledgers.SideCr || !tb.Rows[0].ClosingBalance.Equal(dec("500")) {
		t.Fatalf("expected 500 Cr for overdrawn bank, got %s %s", tb.Rows[0].ClosingBalance, tb.Rows[0].Side)
	}
	if !tb.Balanced {
		t.Fatalf("expected balanced")
	}
}

func TestProfitAndLoss(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	pl, err := buildProfitAndLoss(from, asOf, []activityRow{
		row(1, "Sales", groups.GroupTypeIncome, "0", "0", "10000"),
		row(2, "Rent", groups.GroupTypeExpense, "0", "3000", "0"),
		row(3, "Salaries", groups.GroupTypeExpense, "0", "4000", "0"),
		row(4, "Cash", groups.GroupTypeAsset, "0", "10000", "7000"),
	})
	if err != nil {
		t.Fatalf("buildProfitAndLoss: %v", err)
	}
	if !pl.TotalIncome.Equal(dec("10000")) || !pl.TotalExpenses.Equal(dec("7000")) {
		t.Fatalf("totals wrong: income=%s expenses=%s", pl.TotalIncome, pl.TotalExpenses)
	}
	if !pl.NetProfit.Equal(dec("3000")) || pl.NetProfitType != "Profit" {
		t.Fatalf("expected profit 3000, got %s %s", pl.NetProfit, pl.NetProfitType)
	}
	if len(pl.Income) != 1 || len(pl.Expenses) != 2 {
		t.Fatalf("row buckets wrong: %d income %d expense", len(pl.Income), len(pl.Expenses))
	}
}

func TestProfitAndLossReportsLoss(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	pl, err := buildProfitAndLoss(from, asOf, []activityRow{
		row(1, "Sales", groups.GroupTypeIncome, "0", "0", "1000"),
		row(2, "Rent", groups.GroupTypeExpense, "0", "2500", "0"),
	})
	if err != nil {
		t.Fatalf("buildProfitAndLoss: %v", err)
	}
	if !pl.NetProfit.Equal(dec("-1500")) || pl.NetProfitType != "Loss" {
		t.Fatalf("expected loss -1500, got %s %s", pl.NetProfit, pl.NetProfitType)
	}
}

func TestBalanceSheetSurfacesDifference(t *testing.T) {
	// Unrolled current-period profit of 3000 shows up as the
	// difference between sides, never hidden.
	bs, err := buildBalanceSheet(asOf, []activityRow{
		row(1, "Cash", groups.GroupTypeAsset, "5000", "10000", "7000"),
		row(2, "Capital", groups.GroupTypeEquity, "5000", "0", "0"),
		row(3, "Sales", groups.GroupTypeIncome, "0", "0", "10000"),
		row(4, "Rent", groups.GroupTypeExpense, "0", "7000", "0"),
	})
	if err != nil {
		t.Fatalf("buildBalanceSheet: %v", err)
	}
	if !bs.TotalAssets.Equal(dec("8000")) || !bs.TotalLiabilities.Equal(dec("5000")) {
		t.Fatalf("totals wrong: assets=%s liabilities=%s", bs.TotalAssets, bs.TotalLiabilities)
	}
	if !bs.Difference.Equal(dec("3000")) {
		t.Fatalf("expected difference 3000, got %s", bs.Difference)
	}
}

func gstrRow(number, gstin, partyState, companyState, taxable, igst, grand string) gstrInvoiceRow {
	return gstrInvoiceRow{
		GSTR1Invoice: GSTR1Invoice{
			InvoiceNumber: number,
			PartyGSTIN:    gstin,
			TaxableValue:  dec(taxable),
			IGST:          dec(igst),
			GrandTotal:    dec(grand),
		},
		PartyState:   partyState,
		CompanyState: companyState,
	}
}

func TestClassifyGSTR1(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	limit := dec("250000")
	out := classifyGSTR1(from, asOf, []gstrInvoiceRow{
		gstrRow("B2B-1", "27AAAAA0000A1Z5", "Maharashtra", "Maharashtra", "1000", "0", "1180"),
		gstrRow("LARGE-1", "", "Delhi", "Maharashtra", "300000", "54000", "354000"),
		gstrRow("SMALL-1", "", "Delhi", "Maharashtra", "1000", "180", "1180"),
		gstrRow("SMALL-2", "", "Delhi", "Maharashtra", "2000", "360", "2360"),
		gstrRow("SMALL-3", "", "Maharashtra", "Maharashtra", "500", "0", "590"),
	}, limit)

	if len(out.B2B) != 1 || out.B2B[0].InvoiceNumber != "B2B-1" {
		t.Fatalf("B2B bucket wrong: %+v", out.B2B)
	}
	if len(out.B2CLarge) != 1 || out.B2CLarge[0].InvoiceNumber != "LARGE-1" {
		t.Fatalf("B2C large bucket wrong: %+v", out.B2CLarge)
	}
	if len(out.B2CSmall) != 2 {
		t.Fatalf("expected two B2C small state buckets, got %d", len(out.B2CSmall))
	}
	delhi := out.B2CSmall[0]
	if delhi.PlaceOfSupply != "Delhi" || !delhi.TaxableValue.Equal(dec("3000")) || !delhi.IGST.Equal(dec("540")) {
		t.Fatalf("Delhi bucket wrong: %+v", delhi)
	}
}

func TestClassifyGSTR1IntrastateNeverLarge(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := classifyGSTR1(from, asOf, []gstrInvoiceRow{
		gstrRow("SMALL-BIG", "", "Maharashtra", "Maharashtra", "400000", "0", "472000"),
	}, dec("250000"))
	if len(out.B2CLarge) != 0 || len(out.B2CSmall) != 1 {
		t.Fatalf("intrastate invoice must stay in B2C small regardless of value")
	}
}

func TestSubtractSummaryNetsNotes(t *testing.T) {
	net := subtractSummary(
		TaxSummary{TaxableValue: dec("10000"), IGST: dec("1800")},
		TaxSummary{TaxableValue: dec("1000"), IGST: dec("180")},
	)
	if !net.TaxableValue.Equal(dec("9000")) || !net.IGST.Equal(dec("1620")) {
		t.Fatalf("net summary wrong: %+v", net)
	}
}
