package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshop-labs/checkout/configs"
	appcheckout "github.com/eshop-labs/checkout/internal/application/checkout"
	appshipping "github.com/eshop-labs/checkout/internal/application/shipping"
	domainshipping "github.com/eshop-labs/checkout/internal/domain/shipping"
	"github.com/eshop-labs/checkout/internal/infrastructure/id"
	"github.com/eshop-labs/checkout/internal/infrastructure/memory"
	"github.com/eshop-labs/checkout/internal/infrastructure/queue"
	"github.com/eshop-labs/checkout/internal/infrastructure/queue/kafkanotify"
	"github.com/eshop-labs/checkout/internal/infrastructure/queue/rabbit"
	"github.com/eshop-labs/checkout/internal/infrastructure/redisstore"
	shippingworker "github.com/eshop-labs/checkout/internal/infrastructure/shipping/worker"
	"github.com/eshop-labs/checkout/internal/infrastructure/sqlitestore"
	"github.com/eshop-labs/checkout/internal/pkg/logging"
	"github.com/eshop-labs/checkout/internal/pkg/metrics"
	httppresentation "github.com/eshop-labs/checkout/internal/presentation/http"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := configs.Load(getenvDefault("CONFIG_DIR", "./configs"), getenvDefault("APP_ENV", "dev"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.MustNewLogger(cfg.App.Name, cfg.App.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	met := metrics.New(cfg.App.Name)
	idGenerator := id.NewUUIDGenerator()
	catalogRepo := memory.NewCatalogRepository()

	store, storeCleanup, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("store_init_failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer storeCleanup()

	bus := queue.NewBus()
	notifier, notifierCleanup, err := buildNotifier(cfg, bus)
	if err != nil {
		logger.Fatal("notifier_init_failed", zap.String("backend", cfg.Notifier.Backend), zap.Error(err))
	}
	defer notifierCleanup()

	shippingService := appshipping.NewService(store, notifier, idGenerator, met)

	// The due-date worker rides the in-memory bus; with a broker-backed
	// notifier an external consumer owns processing instead.
	if cfg.Notifier.Backend == "memory" {
		w := shippingworker.New(bus, store, shippingService, cfg.Worker.Grace, logger)
		w.Start()
		defer w.Stop()
	}
	bus.Start(context.Background())
	defer bus.Stop()

	handler := httppresentation.NewHandler(
		catalogRepo,
		shippingService,
		idGenerator,
		appcheckout.OrderConfig{DueOffset: cfg.Checkout.DueOffset},
		met,
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}

func buildStore(cfg configs.Config) (domainshipping.Store, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.NewShipmentStore(), func() {}, nil
	case "redis":
		return redisstore.New(cfg.Redis.Addr), func() {}, nil
	case "sqlite":
		store, err := sqlitestore.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildNotifier(cfg configs.Config, bus *queue.Bus) (domainshipping.Notifier, func(), error) {
	switch cfg.Notifier.Backend {
	case "memory":
		return bus, func() {}, nil
	case "rabbit":
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open channel: %w", err)
		}
		notifier, err := rabbit.NewNotifier(ch)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, err
		}
		return notifier, func() { _ = ch.Close(); _ = conn.Close() }, nil
	case "kafka":
		notifier := kafkanotify.NewNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return notifier, func() { _ = notifier.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier backend %q", cfg.Notifier.Backend)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
