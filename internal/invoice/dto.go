package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemInput is one invoice line as submitted by the caller; the derived
// columns are computed server side and never trusted from input.
type ItemInput struct {
	ItemID          *int64          `json:"item_id"`
	Description     string          `json:"description" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateInput is the payload for creating or replacing an invoice.
type CreateInput struct {
	CompanyID             int64           `json:"company_id" validate:"required,gt=0"`
	Type                  Type            `json:"type" validate:"required"`
	InvoiceNumber         string          `json:"invoice_number" validate:"required"`
	Date                  time.Time       `json:"date" validate:"required"`
	DueDate               *time.Time      `json:"due_date"`
	PartyLedgerID         int64           `json:"party_ledger_id" validate:"required,gt=0"`
	SalesLedgerID         int64           `json:"sales_ledger_id" validate:"required,gt=0"`
	DiscountPercent       decimal.Decimal `json:"discount_percent"`
	OriginalInvoiceNumber string          `json:"original_invoice_number"`
	OriginalInvoiceDate   *time.Time      `json:"original_invoice_date"`
	Narration             string          `json:"narration"`
	Items                 []ItemInput     `json:"items" validate:"required,min=1,dive"`
}

// Validate applies the checks the struct tags cannot express.
func (in *CreateInput) Validate() error {
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if in.DiscountPercent.IsNegative() {
		return ErrNegativeAmount
	}
	for _, it := range in.Items {
		if it.Quantity.Sign() <= 0 || it.Rate.IsNegative() {
			return ErrNegativeAmount
		}
		if it.TaxRatePercent.IsNegative() || it.DiscountPercent.IsNegative() {
			return ErrNegativeAmount
		}
	}
	return nil
}

// PaymentInput records a settlement against an invoice.
type PaymentInput struct {
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	CashLedgerID    int64           `json:"cash_ledger_id" validate:"required,gt=0"`
	PaymentMode     string          `json:"payment_mode" validate:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// Validate applies the checks the struct tags cannot express.
func (in *PaymentInput) Validate() error {
	if in.Amount.Sign() <= 0 {
		return ErrNegativeAmount
	}
	return nil
}

// ListFilters narrows invoice listings.
type ListFilters struct {
	CompanyID     int64
	Type          Type
	PaymentStatus PaymentStatus
	PartyLedgerID int64
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// Offset converts page and limit into a SQL offset.
func (f ListFilters) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
