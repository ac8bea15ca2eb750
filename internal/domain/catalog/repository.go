package catalog

import "context"

type Repository interface {
	Get(ctx context.Context, sku string) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
