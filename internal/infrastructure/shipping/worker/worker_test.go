package worker_test

import (
	"context"
	"testing"
	"time"

	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/eshop-labs/checkout/internal/infrastructure/memory"
	"github.com/eshop-labs/checkout/internal/infrastructure/queue"
	"github.com/eshop-labs/checkout/internal/infrastructure/shipping/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uuidIDs struct{}

func (uuidIDs) NewID() string { return uuid.NewString() }

type fixture struct {
	service *appshipping.Service
	worker  *worker.Worker
}

func newFixture(t *testing.T, grace time.Duration) *fixture {
	t.Helper()

	store := memory.NewShipmentStore()
	bus := queue.NewBus()
	service := appshipping.NewService(store, bus, uuidIDs{}, nil)

	w := worker.New(bus, store, service, grace, nil)
	w.Start()
	bus.Start(context.Background())
	t.Cleanup(w.Stop)
	t.Cleanup(bus.Stop)

	return &fixture{service: service, worker: w}
}

// A shipment left unconfirmed through its due date is swept to failed once
// the worker drives Process past the deadline.
func TestWorker_SweepsOverdueShipmentToFailed(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)

	due := time.Now().UTC().Add(150 * time.Millisecond)
	id, err := f.service.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", due)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := f.service.CheckStatus(context.Background(), id)
		return err == nil && status == domain.StatusFailed
	}, 3*time.Second, 20*time.Millisecond)
}

// A shipment processed on time reaches a terminal state that the later sweep
// must leave alone: the worker skips terminal shipments instead of
// recomputing them against the now-elapsed due date.
func TestWorker_LeavesConfirmedShipmentAlone(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)

	due := time.Now().UTC().Add(150 * time.Millisecond)
	id, err := f.service.Create(context.Background(), "Nova Post", []string{"P1"}, "order-1", due)
	require.NoError(t, err)

	status, err := f.service.Process(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, status)

	// wait well past due + grace so the sweep has fired
	time.Sleep(500 * time.Millisecond)

	current, err := f.service.CheckStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, current)
}

// Stop aborts sweeps that are still waiting out their due dates; the
// shipment keeps the status it had.
func TestWorker_StopCancelsPendingSweeps(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)

	due := time.Now().UTC().Add(300 * time.Millisecond)
	id, err := f.service.Create(context.Background(), "Ukr Post", []string{"P1"}, "order-1", due)
	require.NoError(t, err)

	f.worker.Stop()

	time.Sleep(500 * time.Millisecond)

	status, err := f.service.CheckStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}
