package shipping

import "context"

// Store is durable key-value persistence for shipment records, keyed by id.
type Store interface {
	// Put creates or replaces the record.
	Put(ctx context.Context, shipment *Shipment) error
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (*Shipment, error)
	// UpdateStatus overwrites the stored status, ErrNotFound if the id is absent.
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// Notifier receives one message per newly created shipment. Delivery
// guarantees belong to the implementation; the coordinator fires and forgets.
type Notifier interface {
	Publish(ctx context.Context, shipmentID string) error
}
