package voucher

import (
	"context"
	"fmt"
	"time"
)

// Service is the double-entry core: it validates, posts, replaces, and
// deletes vouchers, and answers balance queries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error) {
	return s.repo.List(ctx, companyID, from, to)
}

func (s *Service) Get(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	return s.repo.GetWithEntries(ctx, companyID, voucherID)
}

// Post validates the balance invariant and the financial-year guard,
// then persists voucher and entries as one atomic unit.
func (s *Service) Post(ctx context.Context, input PostingInput) (Voucher, error) {
	if err := input.Validate(); err != nil {
		return Voucher{}, err
	}
	var posted Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := guardYear(ctx, tx, input.CompanyID, input.Date); err != nil {
			return err
		}
		for _, entry := range input.Entries {
			ok, err := tx.LedgerExists(ctx, input.CompanyID, entry.LedgerID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: ledger %d", ErrLedgerNotFound, entry.LedgerID)
			}
		}
		inserted, err := tx.InsertVoucher(ctx, input)
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, inserted.ID, input.Entries); err != nil {
			return err
		}
		if input.SourceModule != "" {
			if err := tx.LinkSource(ctx, input.SourceModule, input.SourceID, inserted.ID); err != nil {
				if err == ErrSourceConflict {
					return ErrSourceAlreadyLinked
				}
				return err
			}
		}
		posted = inserted
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	return posted, nil
}

// Replace swaps the voucher's header fields and entire entry set
// atomically. Both the old and the new date must fall outside closed
// financial years.
func (s *Service) Replace(ctx context.Context, voucherID int64, input PostingInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, input.CompanyID, voucherID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, current.CompanyID, current.Date); err != nil {
			return err
		}
		if err := guardYear(ctx, tx, input.CompanyID, input.Date); err != nil {
			return err
		}
		for _, entry := range input.Entries {
			ok, err := tx.LedgerExists(ctx, input.CompanyID, entry.LedgerID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: ledger %d", ErrLedgerNotFound, entry.LedgerID)
			}
		}
		if err := tx.UpdateVoucherHeader(ctx, voucherID, input); err != nil {
			return err
		}
		if err := tx.DeleteEntries(ctx, voucherID); err != nil {
			return err
		}
		return tx.InsertEntries(ctx, voucherID, input.Entries)
	})
}

// Delete removes the voucher and its entries. Callers that derived
// further state from the voucher (invoices, payments, stock) reverse it
// through the invoice poster before calling this.
func (s *Service) Delete(ctx context.Context, companyID, voucherID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, companyID, voucherID)
		if err != nil {
			return err
		}
		if err := guardYear(ctx, tx, current.CompanyID, current.Date); err != nil {
			return err
		}
		if err := tx.UnlinkSource(ctx, voucherID); err != nil {
			return err
		}
		if err := tx.DeleteEntries(ctx, voucherID); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, voucherID)
	})
}

// BalanceAsOf derives the ledger balance at asOf from the opening
// position plus all entries dated at or before it.
func (s *Service) BalanceAsOf(ctx context.Context, companyID, ledgerID int64, asOf time.Time) (Balance, error) {
	activity, err := s.repo.Activity(ctx, companyID, ledgerID, asOf)
	if err != nil {
		return Balance{}, err
	}
	return activity.Balance(), nil
}

// Statement returns the ledger's entries in [from, to] with running
// balances seeded from the day before the window.
func (s *Service) Statement(ctx context.Context, companyID, ledgerID int64, from, to time.Time) (Statement, error) {
	activity, err := s.repo.Activity(ctx, companyID, ledgerID, from.AddDate(0, 0, -1))
	if err != nil {
		return Statement{}, err
	}
	rows, err := s.repo.StatementRows(ctx, companyID, ledgerID, from, to)
	if err != nil {
		return Statement{}, err
	}

	natural := activity.NaturalSide
	running := activity.Net()
	opening := activity.Balance()
	for i := range rows {
		delta := rows[i].Entry.Amount
		if rows[i].Entry.Side != natural {
			delta = delta.Neg()
		}
		running = running.Add(delta)
		rows[i].Running = balanceFromNet(running, natural)
	}

	closing := balanceFromNet(running, natural)
	return Statement{
		LedgerID: ledgerID,
		From:     from,
		To:       to,
		Opening:  opening,
		Rows:     rows,
		Closing:  closing,
	}, nil
}

// SetBankAllocationDate marks when an entry cleared the bank. Metadata
// only; balances are unaffected.
func (s *Service) SetBankAllocationDate(ctx context.Context, companyID, entryID int64, date *time.Time) error {
	return s.repo.SetBankAllocationDate(ctx, companyID, entryID, date)
}

func guardYear(ctx context.Context, tx TxRepository, companyID int64, date time.Time) error {
	year, found, err := tx.YearForDate(ctx, companyID, date)
	if err != nil {
		return err
	}
	if found && year.IsClosed {
		return fmt.Errorf("%w: %s", ErrPeriodClosed, year.Name)
	}
	return nil
}
