package service

import (
	"context"
	"errors"

	"bowtique/internal/domain"
	"bowtique/internal/repository"
)

// CatalogService is the read surface over the polymorphic catalog. Which
// physical table holds an item is hidden from callers; everything is served
// through the shared Product view.
type CatalogService interface {
	FindProduct(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, onlyAvailable bool) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*domain.Product, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

// FindProduct looks up a product by SKU across all category tables.
func (s *catalogService) FindProduct(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := s.catalogRepo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NewProductNotFound(sku)
		}
		return nil, &domain.StorageError{Op: "find product", Err: err}
	}
	return product, nil
}

// ListProducts aggregates products across all categories, optionally limited
// to available ones.
func (s *catalogService) ListProducts(ctx context.Context, onlyAvailable bool) ([]*domain.Product, error) {
	products, err := s.catalogRepo.List(ctx, onlyAvailable)
	if err != nil {
		return nil, &domain.StorageError{Op: "list products", Err: err}
	}
	return products, nil
}

// SearchProducts matches the query against name and description of every
// product, case-insensitively.
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	products, err := s.catalogRepo.Search(ctx, query)
	if err != nil {
		return nil, &domain.StorageError{Op: "search products", Err: err}
	}
	return products, nil
}
