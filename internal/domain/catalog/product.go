package catalog

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("catalog: price must be zero or greater")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Product is a catalog entry identified by SKU. Price and stock travel with
// the entry; equality is SKU equality, so maps key on SKU, not on the struct.
//
// Stock is guarded by a mutex: concurrently committing carts contend on the
// same counter and the available quantity must never go negative.
type Product struct {
	SKU   string
	Price decimal.Decimal

	mu        sync.Mutex
	available int
	updatedAt time.Time
}

func NewProduct(sku string, price decimal.Decimal, available int) (*Product, error) {
	if sku == "" {
		return nil, errors.New("catalog: sku is required")
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if available < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		SKU:       sku,
		Price:     price,
		available: available,
		updatedAt: time.Now().UTC(),
	}, nil
}

// IsAvailable reports whether the requested quantity is in stock right now.
// The answer is advisory: stock may change before a later Purchase.
func (p *Product) IsAvailable(quantity int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return quantity <= p.available
}

// Purchase decrements stock by quantity. Availability is re-validated under
// the lock, so the non-negative-stock invariant holds across concurrent
// commits.
func (p *Product) Purchase(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if quantity > p.available {
		return ErrInsufficientStock
	}
	p.available -= quantity
	p.updatedAt = time.Now().UTC()
	return nil
}

func (p *Product) Stock() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}
