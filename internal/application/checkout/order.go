package checkout

import (
	"context"
	"fmt"
	"time"

	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	"github.com/eshop-labs/checkout/internal/domain/cart"
	"github.com/eshop-labs/checkout/internal/pkg/logging"
	"github.com/eshop-labs/checkout/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultDueOffset is how far in the future the due date lands when the
// caller does not supply one. Short on purpose; override it per deployment
// through OrderConfig.
const DefaultDueOffset = 3 * time.Second

type OrderConfig struct {
	// DueOffset replaces DefaultDueOffset when positive.
	DueOffset time.Duration
}

// Order binds a cart to the shipping coordinator for one checkout attempt.
// Place is meant to be called once per semantic checkout; a second call
// re-commits the already-emptied cart, which yields zero products and a
// shipment with an empty id list rather than an error.
type Order struct {
	ID        string
	cart      *cart.Cart
	shipping  *appshipping.Service
	dueOffset time.Duration
	met       *metrics.Metrics
	now       func() time.Time
}

func NewOrder(id string, c *cart.Cart, shipping *appshipping.Service, cfg OrderConfig, met *metrics.Metrics) *Order {
	offset := cfg.DueOffset
	if offset <= 0 {
		offset = DefaultDueOffset
	}
	return &Order{
		ID:        id,
		cart:      c,
		shipping:  shipping,
		dueOffset: offset,
		met:       met,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the order's notion of "now". Intended for tests.
func (o *Order) WithClock(now func() time.Time) *Order {
	o.now = now
	return o
}

// Place commits the cart and requests shipment creation for the purchased
// SKUs, returning the shipment id. A zero dueAt defaults to now + the
// configured offset.
//
// There is no compensating action: when shipment creation fails after the
// commit succeeded, stock stays decremented with no shipment record. The
// error carries the purchased SKUs context so callers can reconcile.
func (o *Order) Place(ctx context.Context, shippingType string, dueAt time.Time) (string, error) {
	logger := logging.FromContext(ctx).With(zap.String("order_id", o.ID))

	if dueAt.IsZero() {
		dueAt = o.now().Add(o.dueOffset)
	}

	productIDs, err := o.cart.Commit()
	if err != nil {
		o.countOutcome("commit_failed")
		logger.Warn("cart_commit_failed",
			zap.Strings("purchased", productIDs),
			zap.Error(err),
		)
		return "", fmt.Errorf("checkout: commit cart: %w", err)
	}

	shipmentID, err := o.shipping.Create(ctx, shippingType, productIDs, o.ID, dueAt)
	if err != nil {
		o.countOutcome("shipping_failed")
		logger.Error("shipment_create_failed",
			zap.Strings("purchased", productIDs),
			zap.Error(err),
		)
		return "", fmt.Errorf("checkout: create shipment for purchased %v: %w", productIDs, err)
	}

	o.countOutcome("success")
	logger.Info("order_placed",
		zap.String("shipment_id", shipmentID),
		zap.Int("products", len(productIDs)),
	)
	return shipmentID, nil
}

func (o *Order) countOutcome(outcome string) {
	if o.met != nil {
		o.met.CheckoutsTotal.WithLabelValues(outcome).Inc()
	}
}
