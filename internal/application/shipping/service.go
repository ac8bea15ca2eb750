package shipping

import (
	"context"
	"fmt"
	"time"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/eshop-labs/checkout/internal/pkg/logging"
	"github.com/eshop-labs/checkout/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "checkout.shipping"

// Service coordinates the shipment lifecycle: it validates requests, persists
// records through the injected Store, announces new shipments on the
// Notifier, and later drives the time-based transition in Process. It owns
// no timer; Process is called by an external trigger such as the due-date
// worker.
type Service struct {
	store    domain.Store
	notifier domain.Notifier
	ids      IDGenerator
	met      *metrics.Metrics
	tracer   trace.Tracer

	// now is swappable so the inclusive due-date boundary is testable.
	now func() time.Time
}

func NewService(store domain.Store, notifier domain.Notifier, ids IDGenerator, met *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		ids:      ids,
		met:      met,
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service's notion of "now". Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AvailableTypes returns the fixed, ordered set of shipping-type labels.
func (s *Service) AvailableTypes() []string {
	return append([]string(nil), domain.Types...)
}

// Create validates the request, persists the record as created, publishes
// the new id, and promotes the stored status to in_progress, strictly in
// that order. A Put failure fails the whole operation with nothing
// persisted. A publish or status-update failure after a successful Put
// leaves the record in an intermediate state; the error is surfaced to the
// caller rather than retried.
func (s *Service) Create(ctx context.Context, typ string, productIDs []string, orderID string, dueAt time.Time) (_ string, err error) {
	logger := logging.FromContext(ctx)
	ctx, span := s.tracer.Start(ctx, "shipping.create",
		trace.WithAttributes(
			attribute.String("shipping.type", typ),
			attribute.String("order.id", orderID),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	shipment, err := domain.New(s.ids.NewID(), typ, productIDs, orderID, dueAt, s.now())
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("shipment.id", shipment.ID))

	if err := s.store.Put(ctx, shipment); err != nil {
		logger.Error("shipment_put_failed", zap.String("shipment_id", shipment.ID), zap.Error(err))
		return "", fmt.Errorf("shipping: persist shipment: %w", err)
	}

	pubErr := s.notifier.Publish(ctx, shipment.ID)
	if s.met != nil {
		outcome := "success"
		if pubErr != nil {
			outcome = "error"
		}
		s.met.NotifierPublishes.WithLabelValues(outcome).Inc()
	}
	if pubErr != nil {
		logger.Error("shipment_publish_failed", zap.String("shipment_id", shipment.ID), zap.Error(pubErr))
		return "", fmt.Errorf("shipping: publish shipment id: %w", pubErr)
	}

	if err := s.store.UpdateStatus(ctx, shipment.ID, domain.StatusInProgress); err != nil {
		logger.Error("shipment_status_update_failed", zap.String("shipment_id", shipment.ID), zap.Error(err))
		return "", fmt.Errorf("shipping: mark in progress: %w", err)
	}

	if s.met != nil {
		s.met.ShipmentsCreated.WithLabelValues(typ).Inc()
	}
	logger.Info("shipment_created",
		zap.String("shipment_id", shipment.ID),
		zap.String("order_id", orderID),
		zap.String("shipping_type", typ),
	)
	return shipment.ID, nil
}

// CheckStatus returns the current stored status for the shipment.
func (s *Service) CheckStatus(ctx context.Context, id string) (domain.Status, error) {
	shipment, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return shipment.Status, nil
}

// Process applies the time-based transition: a shipment is completed when
// "now" has not passed its due date (inclusive boundary), failed otherwise.
// The status is recomputed from the due date on every call; there is no
// terminal-state guard, matching the lifecycle the module documents.
func (s *Service) Process(ctx context.Context, id string) (_ domain.Status, err error) {
	logger := logging.FromContext(ctx)
	ctx, span := s.tracer.Start(ctx, "shipping.process",
		trace.WithAttributes(attribute.String("shipment.id", id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	shipment, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}

	status := domain.StatusFailed
	if !s.now().After(shipment.DueAt) {
		status = domain.StatusCompleted
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return "", fmt.Errorf("shipping: update status: %w", err)
	}

	if s.met != nil {
		s.met.ShipmentsProcessed.WithLabelValues(string(status)).Inc()
	}
	logger.Info("shipment_processed",
		zap.String("shipment_id", id),
		zap.String("status", string(status)),
	)
	return status, nil
}
