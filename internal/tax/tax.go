// Package tax computes the CGST/SGST/IGST split for a taxable amount.
package tax

import "github.com/shopspring/decimal"

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Split carries the GST components for one taxable amount, rounded to
// the currency's minor unit. Callers sum line-level splits rather than
// re-deriving tax from aggregate taxable value, so invoice totals and
// report totals never diverge.
type Split struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// Total returns CGST + SGST + IGST.
func (s Split) Total() decimal.Decimal {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

// Compute splits the tax on taxable at ratePercent between the
// intra-state pair (CGST+SGST) and the inter-state component (IGST).
// A supply is inter-state when either state is unknown or the states
// differ.
func Compute(taxable, ratePercent decimal.Decimal, companyState, partyState string) Split {
	total := taxable.Mul(ratePercent).Div(hundred)
	if companyState == "" || partyState == "" || companyState != partyState {
		return Split{
			CGST: decimal.Zero,
			SGST: decimal.Zero,
			IGST: total.Round(2),
		}
	}
	half := total.Div(two).Round(2)
	return Split{CGST: half, SGST: half, IGST: decimal.Zero}
}
