package voucher

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

// Voucher is one atomic double-entry transaction. It owns its entry set:
// entries are created, replaced, and deleted only together with the
// voucher.
type Voucher struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	VoucherType   string    `json:"voucher_type"`
	VoucherNumber int64     `json:"voucher_number"`
	Date          time.Time `json:"date"`
	Narration     string    `json:"narration,omitempty"`
	SourceModule  string    `json:"source_module,omitempty"`
	SourceID      uuid.UUID `json:"source_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Entries       []Entry   `json:"entries,omitempty"`
}

// Entry is a single debit or credit against a ledger.
type Entry struct {
	ID                 int64           `json:"id"`
	VoucherID          int64           `json:"voucher_id"`
	LedgerID           int64           `json:"ledger_id"`
	Amount             decimal.Decimal `json:"amount"`
	Side               ledgers.Side    `json:"side"`
	InstrumentNumber   string          `json:"instrument_number,omitempty"`
	InstrumentDate     *time.Time      `json:"instrument_date,omitempty"`
	BankAllocationDate *time.Time      `json:"bank_allocation_date,omitempty"`
}

// Balance is a derived ledger balance: a non-negative amount tagged with
// the side it sits on. Never stored, always recomputed from entries.
type Balance struct {
	Amount decimal.Decimal `json:"amount"`
	Side   ledgers.Side    `json:"side"`
}

// StatementRow is one entry of a ledger statement with the running
// balance after it.
type StatementRow struct {
	Entry
	VoucherNumber int64     `json:"voucher_number"`
	VoucherType   string    `json:"voucher_type"`
	Date          time.Time `json:"date"`
	Narration     string    `json:"narration,omitempty"`
	Running       Balance   `json:"running_balance"`
}

// Statement is the ordered entry sequence for a ledger over a period.
type Statement struct {
	LedgerID int64          `json:"ledger_id"`
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Opening  Balance        `json:"opening_balance"`
	Rows     []StatementRow `json:"rows"`
	Closing  Balance        `json:"closing_balance"`
}

// LedgerActivity is the raw material for a balance: the ledger's opening
// position plus debit/credit sums over persisted entries.
type LedgerActivity struct {
	LedgerID    int64
	Opening     decimal.Decimal
	OpeningSide ledgers.Side
	NaturalSide ledgers.Side
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Net folds the activity into a signed balance in natural-side units:
// positive means the balance sits on the ledger's natural side.
func (a LedgerActivity) Net() decimal.Decimal {
	net := a.Opening
	if a.OpeningSide != a.NaturalSide {
		net = net.Neg()
	}
	if a.NaturalSide == ledgers.SideDr {
		return net.Add(a.Debit).Sub(a.Credit)
	}
	return net.Add(a.Credit).Sub(a.Debit)
}

// Balance renders the signed net as an (amount, side) pair.
func (a LedgerActivity) Balance() Balance {
	return balanceFromNet(a.Net(), a.NaturalSide)
}

func balanceFromNet(net decimal.Decimal, natural ledgers.Side) Balance {
	if net.IsNegative() {
		return Balance{Amount: net.Neg(), Side: natural.Opposite()}
	}
	return Balance{Amount: net, Side: natural}
}
