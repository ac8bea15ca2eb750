package redisstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shipment:"

// ShipmentStore persists one Redis hash per shipment id. Field names follow
// the serialized record form: shipping_id, shipping_type, order_id,
// product_ids (comma-joined), shipping_status, created_date, due_date
// (RFC3339 UTC).
type ShipmentStore struct {
	client *redis.Client
}

func New(addr string) *ShipmentStore {
	return &ShipmentStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func NewWithClient(client *redis.Client) *ShipmentStore {
	return &ShipmentStore{client: client}
}

func (s *ShipmentStore) Put(ctx context.Context, shipment *domain.Shipment) error {
	if shipment == nil || shipment.ID == "" {
		return fmt.Errorf("redis shipment store: id is required")
	}

	if err := s.client.HSet(ctx, keyPrefix+shipment.ID, encode(shipment)).Err(); err != nil {
		return fmt.Errorf("redis shipment store: hset: %w", err)
	}
	return nil
}

func (s *ShipmentStore) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("redis shipment store: hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return decode(fields)
}

func (s *ShipmentStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	exists, err := s.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("redis shipment store: exists: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	if err := s.client.HSet(ctx, keyPrefix+id, "shipping_status", string(status)).Err(); err != nil {
		return fmt.Errorf("redis shipment store: hset status: %w", err)
	}
	return nil
}

func encode(shipment *domain.Shipment) map[string]any {
	return map[string]any{
		"shipping_id":     shipment.ID,
		"shipping_type":   shipment.Type,
		"order_id":        shipment.OrderID,
		"product_ids":     strings.Join(shipment.ProductIDs, ","),
		"shipping_status": string(shipment.Status),
		"created_date":    shipment.CreatedAt.UTC().Format(time.RFC3339Nano),
		"due_date":        shipment.DueAt.UTC().Format(time.RFC3339Nano),
	}
}

func decode(fields map[string]string) (*domain.Shipment, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_date"])
	if err != nil {
		return nil, fmt.Errorf("redis shipment store: parse created_date: %w", err)
	}
	dueAt, err := time.Parse(time.RFC3339Nano, fields["due_date"])
	if err != nil {
		return nil, fmt.Errorf("redis shipment store: parse due_date: %w", err)
	}

	var productIDs []string
	if raw := fields["product_ids"]; raw != "" {
		productIDs = strings.Split(raw, ",")
	}

	return &domain.Shipment{
		ID:         fields["shipping_id"],
		Type:       fields["shipping_type"],
		OrderID:    fields["order_id"],
		ProductIDs: productIDs,
		Status:     domain.Status(fields["shipping_status"]),
		CreatedAt:  createdAt,
		DueAt:      dueAt,
	}, nil
}
