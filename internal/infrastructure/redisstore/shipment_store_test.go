package redisstore

import (
	"testing"
	"time"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleShipment() *domain.Shipment {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Shipment{
		ID:         "ship-1",
		Type:       "Nova Post",
		OrderID:    "order-1",
		ProductIDs: []string{"P1", "P2"},
		Status:     domain.StatusInProgress,
		CreatedAt:  now,
		DueAt:      now.Add(time.Minute),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleShipment()

	fields := make(map[string]string, 7)
	for k, v := range encode(want) {
		fields[k] = v.(string)
	}

	got, err := decode(fields)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shipment mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyProductIDs(t *testing.T) {
	shipment := sampleShipment()
	shipment.ProductIDs = nil

	fields := encode(shipment)
	assert.Equal(t, "", fields["product_ids"])
}

func TestDecode_EmptyProductIDs(t *testing.T) {
	shipment := sampleShipment()
	shipment.ProductIDs = nil

	fields := make(map[string]string, 7)
	for k, v := range encode(shipment) {
		fields[k] = v.(string)
	}

	got, err := decode(fields)
	require.NoError(t, err)
	assert.Nil(t, got.ProductIDs)
}

func TestDecode_BadTimestamps(t *testing.T) {
	base := make(map[string]string, 7)
	for k, v := range encode(sampleShipment()) {
		base[k] = v.(string)
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{name: "garbled created_date", field: "created_date", value: "yesterday"},
		{name: "missing created_date", field: "created_date", value: ""},
		{name: "garbled due_date", field: "due_date", value: "2025-13-99"},
		{name: "missing due_date", field: "due_date", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := make(map[string]string, len(base))
			for k, v := range base {
				fields[k] = v
			}
			fields[tt.field] = tt.value

			_, err := decode(fields)
			require.Error(t, err)
		})
	}
}
