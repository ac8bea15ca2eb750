package queue

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/eshop-labs/checkout/internal/pkg/logging"

	"go.uber.org/zap"
)

// Handler processes one published shipment id.
type Handler func(ctx context.Context, shipmentID string) error

// Bus is an in-memory shipping notifier with subscriber fanout. It satisfies
// shipping.Notifier for single-process deployments and tests; broker-backed
// notifiers (rabbit, kafka) replace it when durability matters.
type Bus struct {
	mu        sync.RWMutex
	handlers  []Handler
	queue     chan string
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	handlerTimeout time.Duration
}

func NewBus() *Bus {
	return &Bus{
		queue:          make(chan string, 256),
		done:           make(chan struct{}),
		handlerTimeout: 30 * time.Second,
	}
}

// Subscribe registers a handler for every published shipment id.
// Registration is expected before Start.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
	})
}

func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		close(b.queue)
		<-b.done
		if b.cancel != nil {
			b.cancel()
		}
	})
}

// Publish enqueues the shipment id, blocking only when the buffer is full.
func (b *Bus) Publish(ctx context.Context, shipmentID string) error {
	select {
	case b.queue <- shipmentID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for id := range b.queue {
		b.fanout(ctx, id)
	}
}

func (b *Bus) fanout(ctx context.Context, shipmentID string) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	logger := logging.FromContext(ctx).With(zap.String("shipment_id", shipmentID))

	for _, h := range handlers {
		h := h
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("notifier_handler_panic",
						zap.Any("panic", r),
						zap.String("stack", string(debug.Stack())),
					)
				}
			}()

			hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
			if err := h(hctx, shipmentID); err != nil {
				logger.Warn("notifier_handler_error", zap.Error(err))
			}
		}()
	}
}
