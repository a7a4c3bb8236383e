// cmd/admission-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"admission-engine/internal/audit"
	"admission-engine/internal/common/config"
	"admission-engine/internal/common/database"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/common/observability"
	"admission-engine/internal/notify"
	"admission-engine/internal/oracle"
	"admission-engine/internal/scheduler"
	"admission-engine/internal/store"
	"admission-engine/internal/transition"
	"admission-engine/internal/workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
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
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting admission engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("admission-engine")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init audit sink ---
	var recorder workflow.AuditRecorder
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		recorder = audit.NewRecorder(esClient, cfg.Audit.Index, log)
	} else {
		zapLog.Info("Audit sink disabled, transitions will only be logged")
		recorder = audit.NewNopRecorder(log)
	}

	// --- Wire stores and domain services ---
	apps := store.NewApplicationStore(pg, log)
	documents := store.NewDocumentStore(pg)
	evaluations := store.NewEvaluationStore(pg)
	interviews := store.NewInterviewStore(pg)

	readiness := oracle.New(documents, evaluations, interviews)
	validator := transition.NewValidator(apps, readiness, cfg.Admission, log)

	templates, err := notify.LoadTemplates(cfg.Notifications.TemplateRegistry)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err))
	}

	limiter := notify.NewRateLimiter(redisClient.GetClient(), cfg.Notifications.RateLimit.PerRecipientPerHour)
	notifier, err := notify.New(cfg.Notifications, apps, templates, limiter, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	evaluator := workflow.NewEvaluator(
		apps, readiness, validator, notifier, recorder,
		cfg.Admission,
		cfg.Scheduler.Workers,
		config.GetDuration(cfg.Notifications.DispatchTimeoutSeconds),
		obs,
		log,
	)

	sched := scheduler.New(evaluator, redisClient.GetClient(), cfg.Scheduler, obs, log)
	sched.Start()

	// --- Health/Metrics server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on " + cfg.App.MetricsAddr)
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping scheduler...")
	sched.Stop()

	zapLog.Info("Admission engine stopped gracefully")
}
