package enquiry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Submit validates and stores a bulk-order enquiry.
func (s *Service) Submit(ctx context.Context, e Enquiry) (Enquiry, error) {
	if errs := Validate(e); errs != nil {
		return Enquiry{}, errs
	}
	e = e.normalize()
	e.CreatedAt = s.now()
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Enquiry{}, err
	}
	s.log.Info("bulk enquiry received",
		zap.Int("enquiry", created.ID),
		zap.String("product_type", created.ProductType),
		zap.Int("quantity", created.Quantity),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Enquiry, error) {
	return s.repo.List(ctx)
}
