package ledgers

import (
	"context"
	"fmt"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]LedgerWithGroup, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (LedgerWithGroup, error) {
	if companyID <= 0 || id <= 0 {
		return LedgerWithGroup{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, ledger Ledger) (Ledger, error) {
	if err := validate(ledger); err != nil {
		return Ledger{}, err
	}
	return s.repo.Create(ctx, ledger)
}

func (s *Service) Update(ctx context.Context, id int64, ledger Ledger) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(ledger); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, ledger)
}

// Delete removes a ledger only when no voucher entries reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	count, err := s.repo.EntryCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d voucher entries reference ledger %d", shared.ErrInUse, count, id)
	}
	return s.repo.Delete(ctx, id)
}

func validate(ledger Ledger) error {
	if ledger.CompanyID <= 0 {
		return fmt.Errorf("%w: company_id", shared.ErrRequiredField)
	}
	if ledger.GroupID <= 0 {
		return fmt.Errorf("%w: group_id", shared.ErrRequiredField)
	}
	if ledger.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if ledger.OpeningBalance.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", shared.ErrValidation)
	}
	if !ledger.OpeningBalanceSide.Valid() {
		return fmt.Errorf("%w: opening balance side must be DR or CR", shared.ErrValidation)
	}
	return nil
}
