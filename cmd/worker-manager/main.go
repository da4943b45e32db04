// cmd/worker-manager/main.go
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

	"go.uber.org/zap"

	"vendorhub-workers/internal/common/aws"
	"vendorhub-workers/internal/common/camunda"
	"vendorhub-workers/internal/common/config"
	"vendorhub-workers/internal/common/database"
	apperrors "vendorhub-workers/internal/common/errors"
	"vendorhub-workers/internal/common/logger"
	"vendorhub-workers/internal/common/observability"

	pa "vendorhub-workers/internal/workers/application/prequalify-applicant"
	rp "vendorhub-workers/internal/workers/application/record-prequalification"
	sn "vendorhub-workers/internal/workers/application/send-notification"
	vs "vendorhub-workers/internal/workers/infrastructure/validate-subscription"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", config.EnvFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Init Zeebe Client ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()
	err = retryWithBackoff(ctx, func() error {
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(apperrors.NewDatabaseConnectionFailedError(err)))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()
	err = retryWithBackoff(ctx, func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional) ---
	var indexer rp.Indexer
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = retryWithBackoff(ctx, func() error {
				return esClient.Ping(ctx)
			}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		}
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, search indexing disabled",
				zap.Error(apperrors.NewElasticsearchConnectionFailedError(err)))
		} else {
			indexer = esClient
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Register Workers ---
	var workers []*camunda.Worker
	register := func(taskType string, handler func() (workerHandler, error)) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		h, err := handler()
		if err != nil {
			zapLog.Fatal("worker init failed", zap.String("taskType", taskType), zap.Error(err))
		}
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), h.Handle, obs, log,
		))
	}

	register(vs.TaskType, func() (workerHandler, error) {
		wcfg := vs.LoadConfig()
		wcfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, vs.TaskType).Timeout)
		return vs.NewHandler(wcfg, pg.DB, redis.Client, log), nil
	})

	register(pa.TaskType, func() (workerHandler, error) {
		wcfg := pa.LoadConfig()
		wcfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, pa.TaskType).Timeout)
		wcfg.CacheTTL = cfg.CacheTTL()
		return pa.NewHandler(wcfg, redis.Client, log), nil
	})

	register(rp.TaskType, func() (workerHandler, error) {
		wcfg := rp.LoadConfig()
		wcfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, rp.TaskType).Timeout)
		if cfg.Database.Elasticsearch.Index != "" {
			wcfg.Index = cfg.Database.Elasticsearch.Index
		}
		return rp.NewHandler(wcfg, pg.DB, indexer, log), nil
	})

	register(sn.TaskType, func() (workerHandler, error) {
		wcfg := sn.LoadConfig()
		wcfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, sn.TaskType).Timeout)
		wcfg.EmailEnabled = cfg.Notifications.Email.Enabled
		wcfg.FromEmail = cfg.Notifications.Email.FromEmail
		wcfg.SMSEnabled = cfg.Notifications.SMS.Enabled
		wcfg.SenderID = cfg.Notifications.SMS.SenderID

		var (
			sesClient sn.SESService
			snsClient sn.SNSService
		)
		if wcfg.EmailEnabled {
			c, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				return nil, err
			}
			sesClient = c
		}
		if wcfg.SMSEnabled {
			c, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				return nil, err
			}
			snsClient = c
		}
		return sn.NewHandler(wcfg, pg.DB, sesClient, snsClient, log), nil
	})

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := newServer(cfg.Server.Port, zeebe.HealthCheck)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}
