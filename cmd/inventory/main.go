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
	"github.com/MUR0612/smart-inventory/internal/inventory"
	kafkax "github.com/MUR0612/smart-inventory/internal/kafka"
	"github.com/MUR0612/smart-inventory/internal/logging"
	"github.com/MUR0612/smart-inventory/internal/notify"
	"github.com/MUR0612/smart-inventory/internal/postgres"
	"github.com/MUR0612/smart-inventory/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New("inventory-service", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store inventory.Store
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		store = inventory.NewMemoryStore()
	default:
		db, err := postgres.Connect(ctx, cfg.InventoryPostgresDSN, log)
		if err != nil {
			log.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.EnsureInventorySchema(ctx, db); err != nil {
			log.Fatal("db schema", zap.Error(err))
		}
		store = &inventory.PGStore{DB: db}
	}

	// Redis: cache invalidation + pub/sub
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := &redisx.Cache{Client: rdb, Log: log}
	publishers := []notify.Publisher{&notify.RedisPublisher{Client: rdb}}

	// Kafka mirror of stock events, only when brokers are configured
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start(ctx)
		publishers = append(publishers, &notify.KafkaPublisher{Producer: prod})
	}

	ledger := inventory.NewLedger(store, cache, notify.NewChannel(log, publishers...), log)

	router := httpx.NewRouter(log)
	(&httpx.InventoryHandler{Ledger: ledger, Log: log}).Register(router)
	srv := &http.Server{Addr: cfg.InventoryHTTPAddr, Handler: router}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.InventoryHTTPAddr), zap.String("storage", cfg.Storage))
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
	ledger.Close() // run queued cache and event work before the producer drains
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
}
