package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the business documents the poster understands. Notes
// post with mirrored entry sides because they reverse an original
// transaction.
type Type string

const (
	TypeSales      Type = "SALES"
	TypePurchase   Type = "PURCHASE"
	TypeCreditNote Type = "CREDIT_NOTE"
	TypeDebitNote  Type = "DEBIT_NOTE"
)

// Valid reports whether t is a known invoice type.
func (t Type) Valid() bool {
	switch t {
	case TypeSales, TypePurchase, TypeCreditNote, TypeDebitNote:
		return true
	}
	return false
}

// PaymentStatus tracks how much of the invoice has been settled.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "UNPAID"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
)

// Invoice is a business document that owns exactly one generated voucher
// and its payments; all three live and die together.
type Invoice struct {
	ID                    int64           `json:"id"`
	CompanyID             int64           `json:"company_id"`
	Type                  Type            `json:"type"`
	InvoiceNumber         string          `json:"invoice_number"`
	Date                  time.Time       `json:"date"`
	DueDate               *time.Time      `json:"due_date,omitempty"`
	PartyLedgerID         int64           `json:"party_ledger_id"`
	SalesLedgerID         int64           `json:"sales_ledger_id"`
	DiscountPercent       decimal.Decimal `json:"discount_percent"`
	OriginalInvoiceNumber string          `json:"original_invoice_number,omitempty"`
	OriginalInvoiceDate   *time.Time      `json:"original_invoice_date,omitempty"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	TaxTotal              decimal.Decimal `json:"tax_total"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	OutstandingAmount     decimal.Decimal `json:"outstanding_amount"`
	PaymentStatus         PaymentStatus   `json:"payment_status"`
	VoucherID             int64           `json:"voucher_id"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Items                 []Item          `json:"items,omitempty"`
}

// outstandingAmount derives the unpaid remainder, clamped at zero.
// The final payment may overshoot the grand total by up to the posting
// epsilon and must still leave outstanding at 0, not negative.
func outstandingAmount(grand, paid decimal.Decimal) decimal.Decimal {
	out := grand.Sub(paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Item is one line of an invoice with its computed tax split.
type Item struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	ItemID          *int64          `json:"item_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
}

// Payment settles part or all of an invoice. Each payment owns the
// receipt/payment voucher it posted.
type Payment struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	VoucherID       int64           `json:"voucher_id"`
	PaymentDate     time.Time       `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMode     string          `json:"payment_mode"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
