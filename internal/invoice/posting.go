package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/tax"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

var hundred = decimal.NewFromInt(100)

// direction fixes which side each leg of the generated voucher posts on,
// plus the sign stock moves with. One table, one algorithm; no
// per-type branching anywhere else in the poster.
type direction struct {
	Party     ledgers.Side
	Goods     ledgers.Side
	StockSign int64
}

var directions = map[Type]direction{
	TypeSales:      {Party: ledgers.SideDr, Goods: ledgers.SideCr, StockSign: -1},
	TypeCreditNote: {Party: ledgers.SideCr, Goods: ledgers.SideDr, StockSign: +1},
	TypePurchase:   {Party: ledgers.SideCr, Goods: ledgers.SideDr, StockSign: +1},
	TypeDebitNote:  {Party: ledgers.SideDr, Goods: ledgers.SideCr, StockSign: -1},
}

// paymentDirection returns the sides of the cash and party legs of a
// payment voucher for the given invoice type. Receivables collect cash
// (Dr cash / Cr party); payables settle it (Dr party / Cr cash).
func paymentDirection(t Type) (cash, party ledgers.Side) {
	switch t {
	case TypeSales, TypeDebitNote:
		return ledgers.SideDr, ledgers.SideCr
	default:
		return ledgers.SideCr, ledgers.SideDr
	}
}

// Totals aggregates the computed money columns of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
}

// computeItems fills the derived columns of each item and returns the
// invoice totals. Tax is computed per line and summed, never re-derived
// from the aggregate taxable value.
func computeItems(items []ItemInput, discountPercent decimal.Decimal, companyState, partyState string) ([]Item, Totals) {
	out := make([]Item, 0, len(items))
	var t Totals
	for _, in := range items {
		amount := in.Quantity.Mul(in.Rate).Round(2)
		discount := amount.Mul(in.DiscountPercent).Div(hundred).Round(2)
		taxable := amount.Sub(discount)
		split := tax.Compute(taxable, in.TaxRatePercent, companyState, partyState)
		out = append(out, Item{
			ItemID:          in.ItemID,
			Description:     in.Description,
			Quantity:        in.Quantity,
			Rate:            in.Rate,
			TaxRatePercent:  in.TaxRatePercent,
			DiscountPercent: in.DiscountPercent,
			Amount:          amount,
			DiscountAmount:  discount,
			TaxableAmount:   taxable,
			CGST:            split.CGST,
			SGST:            split.SGST,
			IGST:            split.IGST,
		})
		t.Subtotal = t.Subtotal.Add(taxable)
		t.CGST = t.CGST.Add(split.CGST)
		t.SGST = t.SGST.Add(split.SGST)
		t.IGST = t.IGST.Add(split.IGST)
	}
	t.TaxTotal = t.CGST.Add(t.SGST).Add(t.IGST)
	t.DiscountAmount = t.Subtotal.Mul(discountPercent).Div(hundred).Round(2)
	t.GrandTotal = t.Subtotal.Add(t.TaxTotal).Sub(t.DiscountAmount)
	return out, t
}

// taxLedgerSet carries the GST ledgers mapped for a company.
type taxLedgerSet struct {
	CGST int64
	SGST int64
	IGST int64
}

// buildEntries assembles the balanced entry set for the invoice voucher:
// the party leg carries the grand total, the goods leg the discounted
// subtotal, and one leg per nonzero GST component. The invoice-level
// discount is netted against the goods leg.
func buildEntries(t Type, partyLedgerID, goodsLedgerID int64, taxLedgers taxLedgerSet, totals Totals) ([]voucher.EntryInput, error) {
	dir, ok := directions[t]
	if !ok {
		return nil, fmt.Errorf("invoice: unknown type %q", t)
	}
	entries := []voucher.EntryInput{
		{LedgerID: partyLedgerID, Amount: totals.GrandTotal, Side: dir.Party},
		{LedgerID: goodsLedgerID, Amount: totals.Subtotal.Sub(totals.DiscountAmount), Side: dir.Goods},
	}
	for _, leg := range []struct {
		ledgerID int64
		amount   decimal.Decimal
	}{
		{taxLedgers.CGST, totals.CGST},
		{taxLedgers.SGST, totals.SGST},
		{taxLedgers.IGST, totals.IGST},
	} {
		if leg.amount.IsZero() {
			continue
		}
		if leg.ledgerID == 0 {
			return nil, ErrTaxLedgerNotMapped
		}
		entries = append(entries, voucher.EntryInput{LedgerID: leg.ledgerID, Amount: leg.amount, Side: dir.Goods})
	}
	return entries, nil
}
