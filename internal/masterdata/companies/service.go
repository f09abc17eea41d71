package companies

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

func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, company Company) (Company, error) {
	if company.Name == "" {
		return Company{}, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, company Company) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if company.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	return s.repo.Update(ctx, id, company)
}
