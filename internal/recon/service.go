// Package recon builds the bank reconciliation view: a bank ledger's
// entries over a period, split by whether they have appeared on the
// bank statement yet.
package recon

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

// Totals summarizes a ledger's transaction list against the bank.
// CompanyBalance is the book position, AmountsNotReflected is the part
// the bank has not seen yet, and BankBalance is what the statement
// should show.
type Totals struct {
	CompanyBalance      decimal.Decimal `json:"company_balance"`
	AmountsNotReflected decimal.Decimal `json:"amounts_not_reflected"`
	BankBalance         decimal.Decimal `json:"bank_balance"`
}

// Reconciliation is the full view for one bank ledger and period.
type Reconciliation struct {
	LedgerID int64                  `json:"ledger_id"`
	From     time.Time              `json:"from"`
	To       time.Time              `json:"to"`
	Rows     []voucher.StatementRow `json:"rows"`
	Totals   Totals                 `json:"totals"`
}

// ComputeTotals folds the listed entries into reconciliation totals.
// Both balances are signed sums of debits minus credits; an entry
// counts as not reflected until its bank allocation date is set.
func ComputeTotals(rows []voucher.StatementRow) Totals {
	var t Totals
	for _, row := range rows {
		amount := row.Amount
		if row.Side == ledgers.SideCr {
			amount = amount.Neg()
		}
		t.CompanyBalance = t.CompanyBalance.Add(amount)
		if row.BankAllocationDate == nil {
			t.AmountsNotReflected = t.AmountsNotReflected.Add(amount)
		}
	}
	t.BankBalance = t.CompanyBalance.Sub(t.AmountsNotReflected)
	return t
}

// Service reads transactions through the voucher layer and marks
// entries as allocated when they show up on the statement.
type Service struct {
	vouchers *voucher.Service
	logger   *slog.Logger
}

func NewService(vouchers *voucher.Service, logger *slog.Logger) *Service {
	return &Service{vouchers: vouchers, logger: logger}
}

func (s *Service) Transactions(ctx context.Context, companyID, ledgerID int64, from, to time.Time) (Reconciliation, error) {
	statement, err := s.vouchers.Statement(ctx, companyID, ledgerID, from, to)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconciliation{
		LedgerID: ledgerID,
		From:     from,
		To:       to,
		Rows:     statement.Rows,
		Totals:   ComputeTotals(statement.Rows),
	}, nil
}

func (s *Service) SetAllocationDate(ctx context.Context, companyID, entryID int64, date *time.Time) error {
	if err := s.vouchers.SetBankAllocationDate(ctx, companyID, entryID, date); err != nil {
		return err
	}
	s.logger.Info("bank allocation updated", "entry_id", entryID, "allocated", date != nil)
	return nil
}
