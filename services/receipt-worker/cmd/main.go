package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripfund/payment-backend/pkg"
	"github.com/tripfund/payment-backend/pkg/database"
	"github.com/tripfund/payment-backend/pkg/repositories"
	"github.com/tripfund/payment-backend/services/receipt-worker/configs"
	"github.com/tripfund/payment-backend/services/receipt-worker/internal/services"
	"go.uber.org/zap"
)

// main initializes and runs the receipt worker service.
func main() {
	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed_to_load_config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, disconnect, err := database.New(ctx, logger, database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	})
	if err != nil {
		logger.Fatal("failed_to_init_db", zap.Error(err))
	}
	defer disconnect()

	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		logger.Fatal("failed_to_run_migrations", zap.Error(err))
	}

	receiptService := services.NewReceiptService(services.ReceiptServiceConfig{
		Logger:      logger,
		Repo:        repositories.NewReceiptRepository(db),
		MaxRetries:  cfg.MaxRetryCount,
		BaseBackoff: cfg.RetryBaseBackoff,
		MaxBackoff:  cfg.MaxRetryBackoff,
	})

	consumer, err := services.NewKafkaReceiptConsumer(ctx, logger, cfg, receiptService)
	if err != nil {
		logger.Fatal("failed_to_create_kafka_consumer", zap.Error(err))
	}
	closeConsumer, err := consumer.Start(ctx)
	if err != nil {
		logger.Fatal("failed_to_start_kafka_consumer", zap.Error(err))
	}

	// Metrics and liveness
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics_server_started", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_error", zap.Error(err))
		}
	}()

	// Handle graceful shutdown on SIGINT or SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	osSignal := <-sigChan
	logger.Info("received_shutdown_signal", zap.String("signal", osSignal.String()))

	cancel()
	closeConsumer()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics_server_shutdown_error", zap.Error(err))
	}
	logger.Info("service_shutdown_completed")
}
