package invoice

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDirectionTable(t *testing.T) {
	cases := []struct {
		invType   Type
		party     ledgers.Side
		goods     ledgers.Side
		stockSign int64
	}{
		{TypeSales, ledgers.SideDr, ledgers.SideCr, -1},
		{TypeCreditNote, ledgers.SideCr, ledgers.SideDr, +1},
		{TypePurchase, ledgers.SideCr, ledgers.SideDr, +1},
		{TypeDebitNote, ledgers.SideDr, ledgers.SideCr, -1},
	}
	for _, tc := range cases {
		dir := directions[tc.invType]
		if dir.Party != tc.party || dir.Goods != tc.goods || dir.StockSign != tc.stockSign {
			t.Fatalf("%s: got %+v, want party=%s goods=%s stock=%d", tc.invType, dir, tc.party, tc.goods, tc.stockSign)
		}
	}
}

func TestNotesMirrorTheirOriginals(t *testing.T) {
	if directions[TypeCreditNote].Party != directions[TypeSales].Party.Opposite() {
		t.Fatalf("credit note party side must mirror sales")
	}
	if directions[TypeDebitNote].Party != directions[TypePurchase].Party.Opposite() {
		t.Fatalf("debit note party side must mirror purchase")
	}
}

func TestPaymentDirection(t *testing.T) {
	cash, party := paymentDirection(TypeSales)
	if cash != ledgers.SideDr || party != ledgers.SideCr {
		t.Fatalf("sales settlement must collect cash: got cash=%s party=%s", cash, party)
	}
	cash, party = paymentDirection(TypePurchase)
	if cash != ledgers.SideCr || party != ledgers.SideDr {
		t.Fatalf("purchase settlement must pay out cash: got cash=%s party=%s", cash, party)
	}
}

func TestComputeItemsIntrastate(t *testing.T) {
	items, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("10"), Rate: dec("100"), TaxRatePercent: dec("18")},
	}, decimal.Zero, "Maharashtra", "Maharashtra")

	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	it := items[0]
	if !it.Amount.Equal(dec("1000")) || !it.TaxableAmount.Equal(dec("1000")) {
		t.Fatalf("amount/taxable wrong: %s/%s", it.Amount, it.TaxableAmount)
	}
	if !it.CGST.Equal(dec("90")) || !it.SGST.Equal(dec("90")) || !it.IGST.IsZero() {
		t.Fatalf("tax split wrong: cgst=%s sgst=%s igst=%s", it.CGST, it.SGST, it.IGST)
	}
	if !totals.GrandTotal.Equal(dec("1180")) {
		t.Fatalf("expected grand total 1180, got %s", totals.GrandTotal)
	}
}

func TestComputeItemsDiscounts(t *testing.T) {
	// Line discount of 10% on 1000, then 5% invoice discount on the
	// 900 subtotal.
	items, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("10"), Rate: dec("100"), TaxRatePercent: dec("18"), DiscountPercent: dec("10")},
	}, dec("5"), "Maharashtra", "Delhi")

	it := items[0]
	if !it.DiscountAmount.Equal(dec("100")) || !it.TaxableAmount.Equal(dec("900")) {
		t.Fatalf("line discount wrong: discount=%s taxable=%s", it.DiscountAmount, it.TaxableAmount)
	}
	if !it.IGST.Equal(dec("162")) {
		t.Fatalf("expected IGST 162 on 900, got %s", it.IGST)
	}
	if !totals.DiscountAmount.Equal(dec("45")) {
		t.Fatalf("expected invoice discount 45, got %s", totals.DiscountAmount)
	}
	// 900 + 162 - 45
	if !totals.GrandTotal.Equal(dec("1017")) {
		t.Fatalf("expected grand total 1017, got %s", totals.GrandTotal)
	}
}

func TestBuildEntriesBalances(t *testing.T) {
	_, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("10"), Rate: dec("100"), TaxRatePercent: dec("18")},
	}, decimal.Zero, "Maharashtra", "Maharashtra")

	entries, err := buildEntries(TypeSales, 10, 20, taxLedgerSet{CGST: 31, SGST: 32, IGST: 33}, totals)
	if err != nil {
		t.Fatalf("buildEntries: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected party+goods+cgst+sgst legs, got %d", len(entries))
	}

	var dr, cr decimal.Decimal
	for _, e := range entries {
		if e.Side == ledgers.SideDr {
			dr = dr.Add(e.Amount)
		} else {
			cr = cr.Add(e.Amount)
		}
	}
	if !dr.Equal(cr) {
		t.Fatalf("entries unbalanced: dr=%s cr=%s", dr, cr)
	}
	if entries[0].LedgerID != 10 || entries[0].Side != ledgers.SideDr || !entries[0].Amount.Equal(dec("1180")) {
		t.Fatalf("party leg wrong: %+v", entries[0])
	}
}

func TestBuildEntriesSkipsZeroTaxLegs(t *testing.T) {
	_, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("1"), Rate: dec("1000"), TaxRatePercent: dec("18")},
	}, decimal.Zero, "Maharashtra", "Delhi")

	// IGST-only supply; CGST/SGST ledgers unmapped must not matter.
	entries, err := buildEntries(TypeSales, 10, 20, taxLedgerSet{IGST: 33}, totals)
	if err != nil {
		t.Fatalf("buildEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected party+goods+igst legs, got %d", len(entries))
	}
}

func TestBuildEntriesRequiresMappedTaxLedger(t *testing.T) {
	_, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("1"), Rate: dec("1000"), TaxRatePercent: dec("18")},
	}, decimal.Zero, "Maharashtra", "Delhi")

	_, err := buildEntries(TypeSales, 10, 20, taxLedgerSet{}, totals)
	if err != ErrTaxLedgerNotMapped {
		t.Fatalf("expected ErrTaxLedgerNotMapped, got %v", err)
	}
}

func TestBuildEntriesPurchaseMirrorsSales(t *testing.T) {
	_, totals := computeItems([]ItemInput{
		{Description: "Widget", Quantity: dec("1"), Rate: dec("1000"), TaxRatePercent: dec("18")},
	}, decimal.Zero, "Maharashtra", "Delhi")

	entries, err := buildEntries(TypePurchase, 10, 20, taxLedgerSet{IGST: 33}, totals)
	if err != nil {
		t.Fatalf("buildEntries: %v", err)
	}
	if entries[0].Side != ledgers.SideCr {
		t.Fatalf("purchase party leg must credit the supplier")
	}
	if entries[1].Side != ledgers.SideDr || entries[2].Side != ledgers.SideDr {
		t.Fatalf("purchase goods and tax legs must debit")
	}
}
