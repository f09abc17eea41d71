package voucher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
)

// Epsilon absorbs rounding drift: debit and credit totals within one
// paisa of each other are considered balanced.
var Epsilon = decimal.New(1, -2)

// EntryInput describes one entry of a posting request.
type EntryInput struct {
	LedgerID           int64           `json:"ledger_id" validate:"required,gt=0"`
	Amount             decimal.Decimal `json:"amount" validate:"required"`
	Side               ledgers.Side    `json:"side" validate:"required,oneof=DR CR"`
	InstrumentNumber   string          `json:"instrument_number,omitempty"`
	InstrumentDate     *time.Time      `json:"instrument_date,omitempty"`
	BankAllocationDate *time.Time      `json:"bank_allocation_date,omitempty"`
}

// PostingInput groups the fields required to create a voucher.
type PostingInput struct {
	CompanyID    int64        `json:"company_id" validate:"required,gt=0"`
	VoucherType  string       `json:"voucher_type" validate:"required"`
	Date         time.Time    `json:"date" validate:"required"`
	Narration    string       `json:"narration,omitempty"`
	SourceModule string       `json:"source_module,omitempty"`
	SourceID     uuid.UUID    `json:"source_id,omitempty"`
	Entries      []EntryInput `json:"entries" validate:"required,min=2,dive"`
}

// Validate enforces the double-entry invariant on the input.
func (in PostingInput) Validate() error {
	if in.CompanyID <= 0 {
		return errors.New("voucher: company required")
	}
	if in.VoucherType == "" {
		return errors.New("voucher: voucher type required")
	}
	if in.Date.IsZero() {
		return errors.New("voucher: date required")
	}
	if len(in.Entries) < 2 {
		return ErrTooFewEntries
	}
	var debit, credit decimal.Decimal
	for idx, entry := range in.Entries {
		if entry.LedgerID <= 0 {
			return fmt.Errorf("voucher: entry %d missing ledger", idx)
		}
		if !entry.Amount.IsPositive() {
			return fmt.Errorf("voucher: entry %d amount must be positive", idx)
		}
		if !entry.Side.Valid() {
			return fmt.Errorf("voucher: entry %d side must be DR or CR", idx)
		}
		if entry.Side == ledgers.SideDr {
			debit = debit.Add(entry.Amount)
		} else {
			credit = credit.Add(entry.Amount)
		}
	}
	if debit.Sub(credit).Abs().GreaterThan(Epsilon) {
		return fmt.Errorf("%w: dr %s cr %s", ErrUnbalanced, debit, credit)
	}
	return nil
}
