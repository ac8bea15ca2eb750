package shipping

import (
	"context"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
)

// Tracking binds a shipment id to the coordinator so callers can poll status
// without carrying both around.
type Tracking struct {
	ShipmentID string
	service    *Service
}

func NewTracking(shipmentID string, service *Service) *Tracking {
	return &Tracking{ShipmentID: shipmentID, service: service}
}

func (t *Tracking) CheckStatus(ctx context.Context) (domain.Status, error) {
	return t.service.CheckStatus(ctx, t.ShipmentID)
}
