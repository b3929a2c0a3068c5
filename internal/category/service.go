package category

import (
	"context"

	"go.uber.org/zap"
)

// Service provides business logic for categories.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(r Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: r, log: log}
}

// List returns up to `limit` categories. A failing store yields an empty
// list so the storefront navigation still renders.
func (s *Service) List(ctx context.Context, limit int) []Category {
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.Warn("list categories", zap.Error(err))
		return []Category{}
	}
	return items
}
