package finyears

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

func (s *Service) List(ctx context.Context, companyID int64) ([]FinancialYear, error) {
	if companyID <= 0 {
		return nil, shared.ErrInvalidID
	}
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (FinancialYear, error) {
	if companyID <= 0 || id <= 0 {
		return FinancialYear{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, year FinancialYear) (FinancialYear, error) {
	if year.CompanyID <= 0 {
		return FinancialYear{}, fmt.Errorf("%w: company_id", shared.ErrRequiredField)
	}
	if year.Name == "" {
		return FinancialYear{}, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if !year.EndDate.After(year.StartDate) {
		return FinancialYear{}, fmt.Errorf("%w: end date must follow start date", shared.ErrValidation)
	}
	return s.repo.Create(ctx, year)
}

func (s *Service) Activate(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.SetActive(ctx, companyID, id)
}

func (s *Service) Close(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.SetClosed(ctx, companyID, id, true)
}

func (s *Service) Reopen(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.SetClosed(ctx, companyID, id, false)
}
