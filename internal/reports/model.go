package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

// TrialBalanceRow is one ledger's closing balance presented on its
// balance side.
type TrialBalanceRow struct {
	LedgerID       int64            `json:"ledger_id"`
	LedgerName     string           `json:"ledger_name"`
	GroupName      string           `json:"group_name"`
	GroupType      groups.GroupType `json:"group_type"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	Side           ledgers.Side     `json:"side"`
}

// TrialBalance lists every ledger with a nonzero closing balance. The
// debit and credit totals must agree; Balanced reports whether they do
// within the posting epsilon.
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// StatementRow is one ledger line of a P&L or balance sheet.
type StatementRow struct {
	LedgerID   int64           `json:"ledger_id"`
	LedgerName string          `json:"ledger_name"`
	GroupName  string          `json:"group_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// ProfitAndLoss sums income and expense ledgers over the period. Only
// activity dated inside the period counts; opening balances do not.
type ProfitAndLoss struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Income        []StatementRow  `json:"income"`
	Expenses      []StatementRow  `json:"expenses"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	NetProfitType string          `json:"net_profit_type"`
}

// BalanceSheet lists asset closing balances against liability and
// equity closing balances. Difference is total assets minus total
// liabilities; when the current period's profit has not been rolled
// into an equity ledger it legitimately shows that profit and is
// surfaced rather than hidden.
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	Assets           []StatementRow  `json:"assets"`
	Liabilities      []StatementRow  `json:"liabilities"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	Difference       decimal.Decimal `json:"difference"`
}

// GSTR1Invoice is one outward invoice in a GSTR-1 bucket.
type GSTR1Invoice struct {
	InvoiceID     int64           `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	PartyName     string          `json:"party_name"`
	PartyGSTIN    string          `json:"party_gstin,omitempty"`
	PlaceOfSupply string          `json:"place_of_supply"`
	TaxableValue  decimal.Decimal `json:"taxable_value"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// GSTR1StateSummary aggregates small B2C supplies by place of supply.
type GSTR1StateSummary struct {
	PlaceOfSupply string          `json:"place_of_supply"`
	TaxableValue  decimal.Decimal `json:"taxable_value"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
}

// GSTR1 buckets outward supplies: B2B when the party is GST
// registered, B2C large for unregistered interstate invoices at or
// above the configured limit, B2C small for the rest.
type GSTR1 struct {
	From     time.Time           `json:"from"`
	To       time.Time           `json:"to"`
	B2B      []GSTR1Invoice      `json:"b2b"`
	B2CLarge []GSTR1Invoice      `json:"b2c_large"`
	B2CSmall []GSTR1StateSummary `json:"b2c_small"`
}

// TaxSummary is one GSTR-3B table: value of supplies and the tax per
// component.
type TaxSummary struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	IGST         decimal.Decimal `json:"igst"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
}

// GSTR3B summarizes outward supplies net of credit notes and eligible
// input tax credit net of debit notes.
type GSTR3B struct {
	From            time.Time  `json:"from"`
	To              time.Time  `json:"to"`
	OutwardSupplies TaxSummary `json:"outward_supplies"`
	EligibleITC     TaxSummary `json:"eligible_itc"`
}
