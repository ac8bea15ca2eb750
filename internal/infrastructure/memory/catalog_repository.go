package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/eshop-labs/checkout/internal/domain/catalog"
)

// CatalogRepository is a process-local catalog. Products are shared by
// reference on purpose: their stock counter is the single contended value
// across concurrently committing carts, so every cart must see the same
// *Product.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *CatalogRepository) Get(ctx context.Context, sku string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (r *CatalogRepository) Save(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil || product.SKU == "" {
		return fmt.Errorf("catalog repository: sku is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.SKU] = product
	return nil
}
