// Package worker runs the polling pool over the job_run queue. Delivery is
// at-least-once; pipelines are written as idempotent writers so a reclaimed
// stale run can safely re-execute.
package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/jobs/runtime"
	"github.com/pathwise/pathwise-backend/internal/platform/envutil"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier

	pollEvery    time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	staleRunning time.Duration
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,

		pollEvery:    time.Duration(envutil.Int("WORKER_POLL_MS", 1000)) * time.Millisecond,
		maxAttempts:  envutil.Int("WORKER_MAX_ATTEMPTS", 5),
		retryDelay:   30 * time.Second,
		staleRunning: 30 * time.Minute,
	}
}

// Start launches the pool; loops exit when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("Starting job worker pool", "concurrency", concurrency, "poll", w.pollEvery.String())

	for i := 1; i <= concurrency; i++ {
		go w.runLoop(ctx, i)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			w.pollOnce(ctx, workerID)
		}
	}
}

// pollOnce claims at most one runnable job and dispatches it. Claim errors
// are logged and swallowed so a flaky database never kills the loop.
func (w *Worker) pollOnce(ctx context.Context, workerID int) {
	job, err := w.repo.ClaimNextRunnable(ctx, nil, w.maxAttempts, w.retryDelay, w.staleRunning)
	if err != nil {
		w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
		return
	}
	if job == nil {
		return
	}

	jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)
	handler, ok := w.registry.Get(job.JobType)
	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.JobType,
			"job_id", job.ID,
		)
		jc.Fail("dispatch", fmt.Errorf("no handler registered for job_type=%s", job.JobType))
		return
	}

	w.dispatch(jc, handler, workerID)
}

func (w *Worker) dispatch(jc *runtime.Context, handler runtime.Handler, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic",
				"worker_id", workerID,
				"job_id", jc.Job.ID,
				"job_type", jc.Job.JobType,
				"panic", r,
			)
			jc.Fail("panic", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := handler.Run(jc); err != nil {
		// Pipelines usually call jc.Fail themselves; safety net.
		jc.Fail("run", err)
	}
}
