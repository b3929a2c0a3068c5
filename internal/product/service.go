package product

import (
	"context"
	"errors"

	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns active products, optionally narrowed to one category.
func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{Category: category})
}

// ListAll includes inactive products for the admin panel.
func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx, ListFilter{IncludeInactive: true})
}

// Get returns an active product. Inactive products are reported as missing.
func (s *Service) Get(ctx context.Context, id int) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Price returns the current price of an active product. ok is false when the
// product is missing or inactive.
func (s *Service) Price(ctx context.Context, id int) (price int, ok bool, err error) {
	p, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p.Price, true, nil
}

func (s *Service) Update(ctx context.Context, id int, u Update) (Product, error) {
	return s.repo.Update(ctx, id, u)
}

func (s *Service) SetStock(ctx context.Context, variantID, stock int) (Variant, error) {
	if stock < 0 {
		return Variant{}, ErrInvalidStock
	}
	return s.repo.SetVariantStock(ctx, variantID, stock)
}

// Available reports whether one more unit of the variant can be ordered.
// Variants the catalog does not track are treated as available.
func (s *Service) Available(ctx context.Context, productID int, color, size string) (bool, error) {
	v, err := s.repo.FindVariant(ctx, productID, color, size)
	if errors.Is(err, ErrVariantNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return v.IsAvailable, nil
}

func (s *Service) Image(ctx context.Context, id int) (upload.Image, error) {
	return s.repo.GetImage(ctx, id)
}

func (s *Service) SetImage(ctx context.Context, id int, img upload.Image) error {
	if err := upload.CheckImage(img.ContentType, int64(img.Size())); err != nil {
		return err
	}
	return s.repo.SetImage(ctx, id, img)
}
