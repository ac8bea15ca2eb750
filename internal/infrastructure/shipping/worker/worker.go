package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/eshop-labs/checkout/internal/infrastructure/queue"

	"go.uber.org/zap"
)

// Worker is the external trigger for the coordinator's time-based
// transition. It learns about new shipments from the notifier bus, reads
// each record's due date from the store, and calls Process once the due date
// (plus a small grace period) has passed. Shipments confirmed on time go
// through the process endpoint before the deadline and reach a terminal
// state; the worker skips those and only sweeps still-pending shipments to
// failed.
type Worker struct {
	bus     *queue.Bus
	store   domain.Store
	service *appshipping.Service
	grace   time.Duration
	log     *zap.Logger

	// ctx bounds every pending sweep; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// sleep is swappable so tests do not wait out real due dates.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(bus *queue.Bus, store domain.Store, service *appshipping.Service, grace time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:     bus,
		store:   store,
		service: service,
		grace:   grace,
		log:     logger.With(zap.String("component", "shipping_worker")),
		ctx:     ctx,
		cancel:  cancel,
		sleep:   sleepCtx,
	}
}

func (w *Worker) Start() {
	if w.bus == nil || w.store == nil || w.service == nil {
		return
	}
	w.bus.Subscribe(w.handleShipmentCreated)
}

// Stop aborts pending sweeps and waits for in-flight ones to return.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) handleShipmentCreated(ctx context.Context, shipmentID string) error {
	shipment, err := w.store.Get(ctx, shipmentID)
	if err != nil {
		w.log.Error("shipment_load_failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return fmt.Errorf("shipping worker: load shipment: %w", err)
	}

	// The wait routinely exceeds the bus handler deadline, so the sweep runs
	// on the worker's own context instead.
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		if wait := time.Until(shipment.DueAt.Add(w.grace)); wait > 0 {
			if err := w.sleep(w.ctx, wait); err != nil {
				w.log.Warn("shipment_wait_aborted", zap.String("shipment_id", shipmentID), zap.Error(err))
				return
			}
		}

		current, err := w.store.Get(w.ctx, shipmentID)
		if err != nil {
			w.log.Error("shipment_load_failed", zap.String("shipment_id", shipmentID), zap.Error(err))
			return
		}
		if current.Status.Terminal() {
			// already confirmed through the process endpoint
			w.log.Debug("shipment_already_settled",
				zap.String("shipment_id", shipmentID),
				zap.String("status", string(current.Status)),
			)
			return
		}

		status, err := w.service.Process(w.ctx, shipmentID)
		if err != nil {
			w.log.Error("shipment_process_failed", zap.String("shipment_id", shipmentID), zap.Error(err))
			return
		}

		w.log.Info("shipment_processed",
			zap.String("shipment_id", shipmentID),
			zap.String("status", string(status)),
		)
	}()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
