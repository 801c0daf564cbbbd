package cron

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mycrew-backend/internal/integrity"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
	"github.com/angelmondragon/mycrew-backend/pkg/redis"
)

type fakeLock struct {
	held bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	fail := &testJob{name: "fail", err: errors.New("boom")}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, nil, fail),
		Lock:     &fakeLock{},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, fail.runs)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "ok"}
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Zero(t, job.runs)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var skipped float64
	for _, mf := range mfs {
		if mf.GetName() != "mycrew_cron_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == metrics.RunSkipped {
					skipped += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, skipped)
}

func TestRegistryCopiesJobs(t *testing.T) {
	a, b := &testJob{name: "a"}, &testJob{name: "b"}
	registry := NewRegistry(a)
	registry.Register(b)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRedisLockOwnership(t *testing.T) {
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redis.Wrap(raw, "test")
	ctx := context.Background()
	t.Setenv("MYCREW_INSTANCE_ID", "sweeper-1")

	first, err := NewRedisLock(client, IntegritySweepJobName, time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(client, IntegritySweepJobName, time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	owner, err := mr.Get("test:lock:integrity-sweep")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(owner, "sweeper-1/"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(50 * time.Second)
	held, err := first.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	mr.FastForward(50 * time.Second)
	assert.True(t, mr.Exists("test:lock:integrity-sweep"), "refresh extends the ttl")

	held, err = second.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, second.Release(ctx))
	assert.True(t, mr.Exists("test:lock:integrity-sweep"), "non-owner must not release")

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("test:lock:integrity-sweep"))
}

type stubSweeper struct {
	report integrity.Report
	err    error
}

func (s stubSweeper) Run(context.Context) (integrity.Report, error) { return s.report, s.err }

func TestIntegritySweepJobPropagatesError(t *testing.T) {
	job := NewIntegritySweepJob(stubSweeper{err: errors.New("db down")}, logger.Nop())
	assert.Equal(t, IntegritySweepJobName, job.Name())
	assert.Error(t, job.Run(context.Background()))

	job = NewIntegritySweepJob(stubSweeper{report: integrity.Report{Repaired: 2}}, logger.Nop())
	assert.NoError(t, job.Run(context.Background()))
}

type refreshingLock struct {
	fakeLock
	mu        sync.Mutex
	refreshes int
}

func (l *refreshingLock) TTL() time.Duration { return 30 * time.Millisecond }

func (l *refreshingLock) Refresh(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshes++
	return true, nil
}

type slowJob struct{ d time.Duration }

func (j slowJob) Name() string { return "slow" }

func (j slowJob) Run(context.Context) error {
	time.Sleep(j.d)
	return nil
}

func TestRunCycleKeepsLockAliveDuringLongJobs(t *testing.T) {
	lock := &refreshingLock{}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(slowJob{d: 80 * time.Millisecond}),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunCycle(context.Background()))
	lock.mu.Lock()
	defer lock.mu.Unlock()
	assert.GreaterOrEqual(t, lock.refreshes, 2)
	assert.False(t, lock.held, "lock released after the cycle")
}
