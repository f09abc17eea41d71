package recurring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template describes an invoice that regenerates on a schedule. Firing
// a template materializes a concrete invoice and advances the next
// invoice date; invoices already generated are never touched.
type Template struct {
	ID                int64           `json:"id"`
	CompanyID         int64           `json:"company_id"`
	ProfileName       string          `json:"profile_name"`
	CronExpression    string          `json:"cron_expression"`
	NextInvoiceDate   time.Time       `json:"next_invoice_date"`
	LastGeneratedDate *time.Time      `json:"last_generated_date,omitempty"`
	PartyLedgerID     int64           `json:"party_ledger_id"`
	SalesLedgerID     int64           `json:"sales_ledger_id"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Items             []TemplateItem  `json:"items,omitempty"`
}

// TemplateItem is one line the generated invoices will carry.
type TemplateItem struct {
	ID              int64           `json:"id"`
	TemplateID      int64           `json:"template_id"`
	ItemID          *int64          `json:"item_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	TaxRatePercent  decimal.Decimal `json:"tax_rate_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}
