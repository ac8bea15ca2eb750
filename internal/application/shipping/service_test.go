package shipping_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	domain "github.com/eshop-labs/checkout/internal/domain/shipping"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records store and notifier side effects in invocation order so the
// create contract (put, publish, update) can be asserted.
type callLog struct {
	calls []string
}

func (l *callLog) record(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

type fakeStore struct {
	log       *callLog
	shipments map[string]*domain.Shipment

	putErr    error
	updateErr error
}

func newFakeStore(log *callLog) *fakeStore {
	return &fakeStore{log: log, shipments: make(map[string]*domain.Shipment)}
}

func (s *fakeStore) Put(_ context.Context, shipment *domain.Shipment) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.log.record("put %s %s", shipment.ID, shipment.Status)
	s.shipments[shipment.ID] = shipment.Clone()
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*domain.Shipment, error) {
	shipment, ok := s.shipments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return shipment.Clone(), nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	shipment, ok := s.shipments[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.log.record("update %s %s", id, status)
	shipment.Status = status
	return nil
}

type fakeNotifier struct {
	log       *callLog
	published []string
	err       error
}

func (n *fakeNotifier) Publish(_ context.Context, shipmentID string) error {
	if n.err != nil {
		return n.err
	}
	n.log.record("publish %s", shipmentID)
	n.published = append(n.published, shipmentID)
	return nil
}

type stubIDs struct{ id string }

func (s stubIDs) NewID() string { return s.id }

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestService_AvailableTypes(t *testing.T) {
	svc := appshipping.NewService(newFakeStore(&callLog{}), &fakeNotifier{log: &callLog{}}, stubIDs{id: "x"}, nil)

	types := svc.AvailableTypes()
	assert.Equal(t, []string{"Nova Post", "Ukr Post", "Meest Express", "Self Pickup"}, types)

	// callers cannot mutate the set
	types[0] = "tampered"
	assert.Equal(t, "Nova Post", svc.AvailableTypes()[0])
}

func TestService_Create(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("happy path: put, publish, update in order", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		notifier := &fakeNotifier{log: log}
		svc := appshipping.NewService(store, notifier, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		orderID := gofakeit.UUID()
		id, err := svc.Create(context.Background(), "Nova Post", []string{"P1", "P2"}, orderID, now.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "ship-1", id)

		assert.Equal(t, []string{
			"put ship-1 created",
			"publish ship-1",
			"update ship-1 in_progress",
		}, log.calls)

		stored := store.shipments["ship-1"]
		require.NotNil(t, stored)
		assert.Equal(t, domain.StatusInProgress, stored.Status)
		assert.Equal(t, orderID, stored.OrderID)
		assert.Equal(t, []string{"P1", "P2"}, stored.ProductIDs)
		assert.Equal(t, now, stored.CreatedAt)
	})

	t.Run("unknown type: no side effects", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		notifier := &fakeNotifier{log: log}
		svc := appshipping.NewService(store, notifier, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		_, err := svc.Create(context.Background(), "nova post", []string{"P1"}, "order-1", now.Add(time.Minute))
		require.ErrorIs(t, err, domain.ErrInvalidType)
		assert.Empty(t, log.calls)
	})

	t.Run("due date in the past: no side effects", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		notifier := &fakeNotifier{log: log}
		svc := appshipping.NewService(store, notifier, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		_, err := svc.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", now.Add(-time.Second))
		require.ErrorIs(t, err, domain.ErrInvalidDueDate)
		assert.Empty(t, log.calls)
	})

	t.Run("due date equal to now is rejected", func(t *testing.T) {
		log := &callLog{}
		svc := appshipping.NewService(newFakeStore(log), &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		_, err := svc.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", now)
		require.ErrorIs(t, err, domain.ErrInvalidDueDate)
		assert.Empty(t, log.calls)
	})

	t.Run("put failure: nothing persisted, nothing published", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		store.putErr = errors.New("store down")
		notifier := &fakeNotifier{log: log}
		svc := appshipping.NewService(store, notifier, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		_, err := svc.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", now.Add(time.Minute))
		require.Error(t, err)
		assert.Empty(t, store.shipments)
		assert.Empty(t, notifier.published)
	})

	t.Run("publish failure: record stays in created state", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		notifier := &fakeNotifier{log: log, err: errors.New("broker down")}
		svc := appshipping.NewService(store, notifier, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(now))

		_, err := svc.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", now.Add(time.Minute))
		require.Error(t, err)

		stored := store.shipments["ship-1"]
		require.NotNil(t, stored)
		assert.Equal(t, domain.StatusCreated, stored.Status)
	})
}

func TestService_CheckStatus(t *testing.T) {
	log := &callLog{}
	store := newFakeStore(log)
	svc := appshipping.NewService(store, &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil)

	_, err := svc.CheckStatus(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC()
	id, err := svc.Create(context.Background(), "Ukr Post", []string{"P1"}, "order-1", now.Add(time.Hour))
	require.NoError(t, err)

	status, err := svc.CheckStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}

func TestService_Process(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dueAt time.Time
		nowAt time.Time
		want  domain.Status
	}{
		{name: "due in future: completed", dueAt: base.Add(time.Minute), nowAt: base, want: domain.StatusCompleted},
		{name: "due exactly now: on time", dueAt: base.Add(time.Minute), nowAt: base.Add(time.Minute), want: domain.StatusCompleted},
		{name: "due in past: failed", dueAt: base.Add(time.Minute), nowAt: base.Add(2 * time.Minute), want: domain.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &callLog{}
			store := newFakeStore(log)
			svc := appshipping.NewService(store, &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil).
				WithClock(fixedClock(base.Add(-time.Hour)))

			id, err := svc.Create(context.Background(), "Meest Express", []string{"P1"}, "order-1", tt.dueAt)
			require.NoError(t, err)

			svc.WithClock(fixedClock(tt.nowAt))
			status, err := svc.Process(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)

			current, err := svc.CheckStatus(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, current)
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		log := &callLog{}
		svc := appshipping.NewService(newFakeStore(log), &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil)

		_, err := svc.Process(context.Background(), "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	// No terminal-state guard: status is recomputed from the due date on
	// every call, so a completed shipment flips to failed once the due date
	// has passed.
	t.Run("recomputes on repeated calls", func(t *testing.T) {
		log := &callLog{}
		store := newFakeStore(log)
		svc := appshipping.NewService(store, &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil).
			WithClock(fixedClock(base))

		id, err := svc.Create(context.Background(), "Self Pickup", []string{"P1"}, "order-1", base.Add(time.Minute))
		require.NoError(t, err)

		status, err := svc.Process(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, status)

		svc.WithClock(fixedClock(base.Add(time.Hour)))
		status, err = svc.Process(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, status)
	})
}

func TestTracking_CheckStatus(t *testing.T) {
	log := &callLog{}
	store := newFakeStore(log)
	svc := appshipping.NewService(store, &fakeNotifier{log: log}, stubIDs{id: "ship-1"}, nil)

	now := time.Now().UTC()
	id, err := svc.Create(context.Background(), "Nova Post", []string{"P1"}, gofakeit.UUID(), now.Add(time.Hour))
	require.NoError(t, err)

	tracking := appshipping.NewTracking(id, svc)
	status, err := tracking.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}
