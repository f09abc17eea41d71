package groups

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Group, error) {
	if id <= 0 {
		return Group{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, group Group) (Group, error) {
	if err := validate(group); err != nil {
		return Group{}, err
	}
	return s.repo.Create(ctx, group)
}

func (s *Service) Update(ctx context.Context, id int64, group Group) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(group); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, group)
}

// Delete removes a group. Groups still referenced by ledgers are kept so
// the classification of posted balances can never dangle.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	count, err := s.repo.LedgerCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d ledgers reference group %d", shared.ErrInUse, count, id)
	}
	return s.repo.Delete(ctx, id)
}
