package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Item, error) {
	if companyID <= 0 {
		return nil, shared.ErrInvalidID
	}
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Item, error) {
	if companyID <= 0 || id <= 0 {
		return Item{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if item.CompanyID <= 0 {
		return Item{}, fmt.Errorf("%w: company_id", shared.ErrRequiredField)
	}
	if item.Name == "" {
		return Item{}, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if item.UnitPrice.IsNegative() {
		return Item{}, fmt.Errorf("%w: unit price cannot be negative", shared.ErrValidation)
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, id int64, item Item) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if item.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return s.repo.Update(ctx, id, item)
}

// AdjustStock moves a stock-tracked item's quantity by delta. Negative
// deltas reduce stock.
func (s *Service) AdjustStock(ctx context.Context, itemID int64, delta decimal.Decimal) error {
	if itemID <= 0 {
		return shared.ErrInvalidID
	}
	if delta.IsZero() {
		return nil
	}
	return s.repo.AdjustStock(ctx, itemID, delta)
}
