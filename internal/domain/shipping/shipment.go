package shipping

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("shipping: shipment not found")
	ErrInvalidType    = errors.New("shipping: shipping type is not available")
	ErrInvalidDueDate = errors.New("shipping: due date must be in the future")
)

type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Types is the fixed, ordered set of accepted shipping-type labels.
// Validation is value-exact, no normalization.
var Types = []string{"Nova Post", "Ukr Post", "Meest Express", "Self Pickup"}

func ValidType(typ string) bool {
	for _, t := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

// Shipment is a tracked delivery record for an order, independent of the
// order's product commitment. Status is mutated only by the coordinator.
type Shipment struct {
	ID         string
	Type       string
	OrderID    string
	ProductIDs []string
	Status     Status
	CreatedAt  time.Time
	DueAt      time.Time
}

// New validates a shipment request against "now" and returns a record in the
// created state. The due date must be strictly in the future.
func New(id, typ string, productIDs []string, orderID string, dueAt, now time.Time) (*Shipment, error) {
	if !ValidType(typ) {
		return nil, ErrInvalidType
	}
	if !dueAt.After(now) {
		return nil, ErrInvalidDueDate
	}
	return &Shipment{
		ID:         id,
		Type:       typ,
		OrderID:    orderID,
		ProductIDs: append([]string(nil), productIDs...),
		Status:     StatusCreated,
		CreatedAt:  now.UTC(),
		DueAt:      dueAt.UTC(),
	}, nil
}

func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	clone := *s
	clone.ProductIDs = append([]string(nil), s.ProductIDs...)
	return &clone
}
