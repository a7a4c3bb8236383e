// internal/scheduler/scheduler.go

// Package scheduler drives periodic batch evaluation. A ticker fires at
// a fixed interval; each tick runs one batch, guarded by a business
// hours window and a Redis lease so only one engine instance evaluates
// at a time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"admission-engine/internal/common/config"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/common/metrics"
	"admission-engine/internal/common/observability"
	"admission-engine/internal/workflow"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKey = "admission:scheduler:lock"

// BatchRunner runs one full evaluation pass.
type BatchRunner interface {
	EvaluateAllPending(ctx context.Context) (workflow.Summary, error)
}

type Scheduler struct {
	runner BatchRunner
	redis  *redis.Client
	cfg    config.SchedulerConfig
	obs    *observability.Observability
	logger logger.Logger

	// instanceID is the lease value, so an instance only releases a
	// lock it still owns.
	instanceID string
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(runner BatchRunner, redisClient *redis.Client, cfg config.SchedulerConfig, obs *observability.Observability, log logger.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		redis:      redisClient,
		cfg:        cfg,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "scheduler"}),
		instanceID: uuid.New().String(),
		now:        time.Now,
	}
}

// Start launches the tick loop in a background goroutine.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("scheduler started", map[string]interface{}{
		"intervalSeconds": s.cfg.IntervalSeconds,
		"workers":         s.cfg.Workers,
	})
}

// Stop cancels the loop and waits for an in-flight batch to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped", nil)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.withinBusinessHours(s.now()) {
		s.logger.Debug("outside business hours, skipping batch", nil)
		return
	}

	acquired, err := s.acquireLock(ctx)
	if err != nil {
		s.logger.Warn("lock acquisition failed, skipping batch", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if !acquired {
		s.logger.Debug("another instance holds the batch lock", nil)
		return
	}
	defer s.releaseLock()

	batchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.BatchTimeoutSeconds)*time.Second)
	defer cancel()

	metrics.BatchesActive.Inc()
	defer metrics.BatchesActive.Dec()

	started := s.now()
	summary, err := s.runner.EvaluateAllPending(batchCtx)
	elapsed := s.now().Sub(started)

	metrics.BatchDuration.Observe(elapsed.Seconds())
	s.obs.RecordEvaluationDuration(ctx, elapsed, "batch")

	if err != nil {
		s.logger.Error("batch evaluation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Info("batch complete", map[string]interface{}{
		"attempted": summary.Attempted,
		"advanced":  summary.Advanced,
		"errors":    len(summary.Errors),
		"duration":  elapsed.String(),
	})
}

// withinBusinessHours reports whether t falls inside the configured
// local-hour window. Start is inclusive, end exclusive; a zero window
// means always on.
func (s *Scheduler) withinBusinessHours(t time.Time) bool {
	if s.cfg.BusinessHoursStart == 0 && s.cfg.BusinessHoursEnd == 0 {
		return true
	}
	hour := t.Hour()
	return hour >= s.cfg.BusinessHoursStart && hour < s.cfg.BusinessHoursEnd
}

// acquireLock takes the batch lease with SET NX. The TTL covers a stuck
// instance: the lease expires and another instance takes over.
func (s *Scheduler) acquireLock(ctx context.Context) (bool, error) {
	ttl := time.Duration(s.cfg.LockTTLSeconds) * time.Second
	return s.redis.SetNX(ctx, lockKey, s.instanceID, ttl).Result()
}

// releaseLock drops the lease only if this instance still owns it. It
// runs on its own context so a canceled batch can still clean up.
func (s *Scheduler) releaseLock() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner, err := s.redis.Get(ctx, lockKey).Result()
	if err != nil || owner != s.instanceID {
		return
	}
	if err := s.redis.Del(ctx, lockKey).Err(); err != nil {
		s.logger.Warn("lock release failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
