package voucher

import (
	"errors"
	"testing"
	"time"

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

func validInput() PostingInput {
	return PostingInput{
		CompanyID:   1,
		VoucherType: "JOURNAL",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Entries: []EntryInput{
			{LedgerID: 1, Amount: dec("500"), Side: ledgers.SideDr},
			{LedgerID: 2, Amount: dec("500"), Side: ledgers.SideCr},
		},
	}
}

func TestValidateBalancedInput(t *testing.T) {
	if err := validInput().Validate(); err != nil {
		t.Fatalf("balanced input rejected: %v", err)
	}
}

func TestValidateUnbalancedInput(t *testing.T) {
	in := validInput()
	in.Entries[1].Amount = dec("499")
	err := in.Validate()
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
}

func TestValidateWithinEpsilon(t *testing.T) {
	in := validInput()
	in.Entries[1].Amount = dec("499.99")
	if err := in.Validate(); err != nil {
		t.Fatalf("one-paisa drift should balance, got %v", err)
	}
	in.Entries[1].Amount = dec("499.98")
	if !errors.Is(in.Validate(), ErrUnbalanced) {
		t.Fatalf("two-paisa drift should not balance")
	}
}

func TestValidateTooFewEntries(t *testing.T) {
	in := validInput()
	in.Entries = in.Entries[:1]
	if !errors.Is(in.Validate(), ErrTooFewEntries) {
		t.Fatalf("expected ErrTooFewEntries")
	}
}

func TestValidateRejectsNonPositiveAmount(t *testing.T) {
	in := validInput()
	in.Entries[0].Amount = decimal.Zero
	if in.Validate() == nil {
		t.Fatalf("zero amount accepted")
	}
	in = validInput()
	in.Entries[0].Amount = dec("-500")
	if in.Validate() == nil {
		t.Fatalf("negative amount accepted")
	}
}

func TestValidateRejectsBadSide(t *testing.T) {
	in := validInput()
	in.Entries[0].Side = "DEBIT"
	if in.Validate() == nil {
		t.Fatalf("invalid side accepted")
	}
}

func TestValidateManyLegs(t *testing.T) {
	in := validInput()
	in.Entries = []EntryInput{
		{LedgerID: 1, Amount: dec("1180"), Side: ledgers.SideDr},
		{LedgerID: 2, Amount: dec("1000"), Side: ledgers.SideCr},
		{LedgerID: 3, Amount: dec("90"), Side: ledgers.SideCr},
		{LedgerID: 4, Amount: dec("90"), Side: ledgers.SideCr},
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("multi-leg balanced input rejected: %v", err)
	}
}
