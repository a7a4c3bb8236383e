// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"admission-engine/internal/common/config"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/common/observability"
	"admission-engine/internal/workflow"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) EvaluateAllPending(_ context.Context) (workflow.Summary, error) {
	r.runs.Add(1)
	return workflow.Summary{Attempted: 2, Advanced: 1}, nil
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		IntervalSeconds:     300,
		BatchTimeoutSeconds: 120,
		Workers:             1,
		LockTTLSeconds:      180,
	}
}

func newTestScheduler(t *testing.T, runner BatchRunner, cfg config.SchedulerConfig) (*Scheduler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(runner, client, cfg, &observability.Observability{}, logger.NewTestLogger(t)), mr
}

func TestTick_RunsBatch(t *testing.T) {
	runner := &countingRunner{}
	s, _ := newTestScheduler(t, runner, testSchedulerConfig())

	s.tick(context.Background())
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestTick_ReleasesLockAfterBatch(t *testing.T) {
	runner := &countingRunner{}
	s, mr := newTestScheduler(t, runner, testSchedulerConfig())

	s.tick(context.Background())
	assert.False(t, mr.Exists(lockKey), "lock must be released after the batch")
}

func TestTick_SkipsWhenLockHeld(t *testing.T) {
	runner := &countingRunner{}
	s, mr := newTestScheduler(t, runner, testSchedulerConfig())

	// Another instance holds the lease.
	require.NoError(t, mr.Set(lockKey, "other-instance"))

	s.tick(context.Background())
	assert.Equal(t, int32(0), runner.runs.Load())

	// The foreign lease must survive.
	owner, err := mr.Get(lockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", owner)
}

func TestTick_SkipsOutsideBusinessHours(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.BusinessHoursStart = 8
	cfg.BusinessHoursEnd = 18

	runner := &countingRunner{}
	s, _ := newTestScheduler(t, runner, cfg)
	s.now = func() time.Time {
		return time.Date(2026, 3, 20, 3, 0, 0, 0, time.UTC)
	}

	s.tick(context.Background())
	assert.Equal(t, int32(0), runner.runs.Load())
}

func TestWithinBusinessHours(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.BusinessHoursStart = 8
	cfg.BusinessHoursEnd = 18

	runner := &countingRunner{}
	s, _ := newTestScheduler(t, runner, cfg)

	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hour     int
		expected bool
	}{
		{7, false},
		{8, true}, // start inclusive
		{12, true},
		{17, true},
		{18, false}, // end exclusive
		{23, false},
	}
	for _, tt := range tests {
		got := s.withinBusinessHours(day.Add(time.Duration(tt.hour) * time.Hour))
		assert.Equal(t, tt.expected, got, "hour %d", tt.hour)
	}

	// Zero window means always on.
	s.cfg.BusinessHoursStart = 0
	s.cfg.BusinessHoursEnd = 0
	assert.True(t, s.withinBusinessHours(day.Add(3*time.Hour)))
}

func TestStartStop(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.IntervalSeconds = 1

	runner := &countingRunner{}
	s, _ := newTestScheduler(t, runner, cfg)

	s.Start()
	time.Sleep(1500 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runner.runs.Load(), int32(1))
}
