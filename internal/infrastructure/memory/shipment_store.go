package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
)

// ShipmentStore keeps shipment records in an RWMutex-guarded map. Records
// are cloned on the way in and out so callers never share mutable state with
// the store.
type ShipmentStore struct {
	mu        sync.RWMutex
	shipments map[string]*domain.Shipment
}

func NewShipmentStore() *ShipmentStore {
	return &ShipmentStore{
		shipments: make(map[string]*domain.Shipment),
	}
}

func (s *ShipmentStore) Put(ctx context.Context, shipment *domain.Shipment) error {
	_ = ctx
	if shipment == nil || shipment.ID == "" {
		return fmt.Errorf("shipment store: id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shipments[shipment.ID] = shipment.Clone()
	return nil
}

func (s *ShipmentStore) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	shipment, ok := s.shipments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return shipment.Clone(), nil
}

func (s *ShipmentStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	shipment, ok := s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	shipment.Status = status
	return nil
}
