package cart

import (
	"errors"

	"github.com/eshop-labs/checkout/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("cart: amount must be greater than zero")
	ErrInsufficientStock = catalog.ErrInsufficientStock
)

type entry struct {
	product  *catalog.Product
	quantity int
}

// Cart holds provisional (product -> quantity) reservations keyed by SKU.
// Nothing is reserved against stock until Commit; Add only checks the
// availability visible at that moment.
type Cart struct {
	entries map[string]*entry
	order   []string // SKUs in first-add order; Commit returns ids in this order
}

func New() *Cart {
	return &Cart{entries: make(map[string]*entry)}
}

func (c *Cart) Contains(product *catalog.Product) bool {
	if product == nil {
		return false
	}
	_, ok := c.entries[product.SKU]
	return ok
}

// Quantity returns the reserved quantity for the product, zero if absent.
func (c *Cart) Quantity(product *catalog.Product) int {
	if product == nil {
		return 0
	}
	if e, ok := c.entries[product.SKU]; ok {
		return e.quantity
	}
	return 0
}

// Add reserves amount units of the product, summing with any existing entry.
// Stock is not mutated; availability is checked against the combined amount
// so a cart can never hold more than the stock visible at add time.
func (c *Cart) Add(product *catalog.Product, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	current := 0
	if e, ok := c.entries[product.SKU]; ok {
		current = e.quantity
	}
	if !product.IsAvailable(current + amount) {
		return ErrInsufficientStock
	}

	if e, ok := c.entries[product.SKU]; ok {
		e.quantity += amount
		return nil
	}
	c.entries[product.SKU] = &entry{product: product, quantity: amount}
	c.order = append(c.order, product.SKU)
	return nil
}

// Remove drops the product's entry. Removing an absent product is a no-op.
func (c *Cart) Remove(product *catalog.Product) {
	if product == nil {
		return
	}
	if _, ok := c.entries[product.SKU]; !ok {
		return
	}
	delete(c.entries, product.SKU)
	for i, sku := range c.order {
		if sku == product.SKU {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Total is the sum of price * quantity over all entries, zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, sku := range c.order {
		e := c.entries[sku]
		total = total.Add(e.product.Price.Mul(decimal.NewFromInt(int64(e.quantity))))
	}
	return total
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// Commit converts every reservation into an authoritative stock decrement,
// in entry order, and returns the purchased SKUs. Each Purchase re-validates
// availability, since stock may have drained since Add.
//
// There is no rollback: when a purchase fails partway through, decrements
// already applied in this call stay applied, the cart keeps all its entries,
// and the returned slice names the SKUs that did go through so the caller
// can react. Only a fully successful commit empties the cart.
func (c *Cart) Commit() ([]string, error) {
	purchased := make([]string, 0, len(c.order))
	for _, sku := range c.order {
		e := c.entries[sku]
		if err := e.product.Purchase(e.quantity); err != nil {
			return purchased, err
		}
		purchased = append(purchased, sku)
	}

	c.entries = make(map[string]*entry)
	c.order = nil
	return purchased, nil
}
