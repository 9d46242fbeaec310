package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/config"
	"github.com/MUR0612/smart-inventory/internal/httpx"
	kafkax "github.com/MUR0612/smart-inventory/internal/kafka"
	"github.com/MUR0612/smart-inventory/internal/logging"
	"github.com/MUR0612/smart-inventory/internal/notify"
	"github.com/MUR0612/smart-inventory/internal/orders"
	"github.com/MUR0612/smart-inventory/internal/postgres"
	"github.com/MUR0612/smart-inventory/internal/redisx"
	"github.com/MUR0612/smart-inventory/internal/saga"
	"github.com/MUR0612/smart-inventory/internal/stockclient"
)

type subscriber interface {
	Run(ctx context.Context, h notify.HandlerFunc) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store orders.Store
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		store = orders.NewMemoryStore()
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.EnsureOrdersSchema(ctx, db); err != nil {
			log.Fatal("db schema", zap.Error(err))
		}
		store = &orders.PGStore{DB: db}
	}

	// order lifecycle events
	var (
		prod   *kafkax.Producer
		events *orders.Events
	)
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start(ctx)
		events = &orders.Events{W: prod, Producer: cfg.ServiceName, Log: log}
	}

	ledger := stockclient.New(cfg.InventoryBaseURL, cfg.InventoryTimeout)
	orch := saga.New(ledger, store, log, saga.WithEvents(events))

	// stock event subscriber
	var sub subscriber
	switch cfg.NotifySource {
	case config.NotifyRedis:
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		sub = &notify.RedisSubscriber{Client: rdb, Topics: notify.Topics, Log: log}
	case config.NotifyKafka:
		if len(cfg.KafkaBrokers) == 0 {
			log.Fatal("NOTIFY_SOURCE=kafka requires KAFKA_BROKERS")
		}
		sub = &notify.KafkaSubscriber{
			Consumer: kafkax.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, notify.Topics, cfg.KafkaWorkers, log),
		}
	}
	if sub != nil {
		alerts := &notify.AlertLogger{Log: log}
		go func() {
			log.Info("stock event subscriber started", zap.String("source", cfg.NotifySource), zap.Strings("topics", notify.Topics))
			if err := sub.Run(ctx, alerts.Handle); err != nil {
				log.Error("stock event subscriber exited", zap.Error(err))
			}
		}()
	}

	router := httpx.NewRouter(log)
	(&httpx.OrdersHandler{Saga: orch, Log: log}).Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("inventory", cfg.InventoryBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	cancel() // stop subscriber
}
