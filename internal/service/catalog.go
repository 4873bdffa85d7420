package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repo"
	"storefront/internal/transport"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int, activeOnly bool) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, offset, limit, activeOnly)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validateProduct(req.Name, req.Price, req.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := validateProduct(product.Name, product.Price, product.Stock); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return err
}

func validateProduct(name string, price float64, stock int) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	return nil
}
