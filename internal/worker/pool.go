// Package worker implements the Worker Pool described in spec.md §4.7 and
// §5: per-type concurrency, store-mediated claiming (no in-memory job
// queue), jittered exponential backoff on retry, and graceful shutdown.
// Grounded on the teacher's internal/queue/audio_jobs.go AudioQueue
// goroutine-per-worker shape, generalized from a channel-fed queue to
// Store.ClaimNext polling since coordination now lives in the database.
package worker

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/logger"
	"github.com/musewave/backend/internal/models"
	"github.com/musewave/backend/internal/store"
)

// Handler executes one claimed Job and returns its result payload.
type Handler func(ctx context.Context, job *models.Job) (models.JSONMap, error)

// Observer receives lifecycle signals the metrics layer turns into the
// gauges and counters named in spec.md §4.9. All methods must be safe to
// call from multiple goroutines; a nil Observer is a valid no-op.
type Observer interface {
	JobClaimed(jobType models.JobType)
	JobSucceeded(jobType models.JobType, duration time.Duration)
	JobFailed(jobType models.JobType, duration time.Duration)
	WorkersActive(jobType models.JobType, delta int)
}

type noopObserver struct{}

func (noopObserver) JobClaimed(models.JobType)                          {}
func (noopObserver) JobSucceeded(models.JobType, time.Duration)         {}
func (noopObserver) JobFailed(models.JobType, time.Duration)            {}
func (noopObserver) WorkersActive(models.JobType, int)                  {}

// Config configures a Pool.
type Config struct {
	// Concurrency maps job type to the number of goroutines claiming that
	// type, per spec.md §6's WORKER_CONCURRENCY.
	Concurrency map[models.JobType]int
	// PollInterval is the fixed sleep an idle worker uses between
	// unsuccessful claims (spec.md §4.7: "100-750ms").
	PollInterval time.Duration
	// GenerationTimeoutBaseMs and the job's duration_sec param together
	// derive the per-job wall-clock timeout (spec.md §5: default 15min *
	// (duration_sec/60)).
	GenerationTimeoutBaseMs int
	// GracefulShutdownSec bounds how long Stop waits for in-flight
	// handlers before returning jobs to queued (spec.md §5).
	GracefulShutdownSec int
}

// Pool runs one goroutine per (job type, concurrency slot), each polling
// the Store for claimable work.
type Pool struct {
	store    *store.Store
	handlers map[models.JobType]Handler
	cfg      Config
	observer Observer

	wake map[models.JobType]chan struct{}

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a Pool. handlers must have one entry per job type the pool is
// configured to claim.
func New(st *store.Store, handlers map[models.JobType]Handler, cfg Config, observer Observer) *Pool {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.GenerationTimeoutBaseMs <= 0 {
		cfg.GenerationTimeoutBaseMs = 15 * 60 * 1000
	}
	if cfg.GracefulShutdownSec <= 0 {
		cfg.GracefulShutdownSec = 30
	}
	if observer == nil {
		observer = noopObserver{}
	}

	wake := make(map[models.JobType]chan struct{}, len(cfg.Concurrency))
	for jobType := range cfg.Concurrency {
		wake[jobType] = make(chan struct{}, 1)
	}

	return &Pool{
		store:    st,
		handlers: handlers,
		cfg:      cfg,
		observer: observer,
		wake:     wake,
	}
}

// Start launches Concurrency[type] goroutines per job type.
func (p *Pool) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	for jobType, n := range p.cfg.Concurrency {
		handler, ok := p.handlers[jobType]
		if !ok {
			logger.Log.Warn("worker: no handler registered for type, skipping", zap.String("type", string(jobType)))
			continue
		}
		for i := 0; i < n; i++ {
			p.wg.Add(1)
			go p.runLoop(jobType, handler, i)
		}
	}
}

// Stop cancels polling and waits up to GracefulShutdownSec for in-flight
// handlers to finish. A handler that returns an error after cancellation
// goes through the usual retry/fail path. A handler still running when the
// window ends leaves its row in running; no code path returns such a row to
// queued afterwards.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Duration(p.cfg.GracefulShutdownSec) * time.Second):
		logger.Log.Warn("worker: graceful shutdown window elapsed with handlers still running")
	}
}

// Wake signals idle workers of jobType to poll immediately rather than
// waiting out their PollInterval, per spec.md §4.7's post-enqueue wake
// signal.
func (p *Pool) Wake(jobType models.JobType) {
	ch, ok := p.wake[jobType]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (p *Pool) runLoop(jobType models.JobType, handler Handler, workerIdx int) {
	defer p.wg.Done()
	p.observer.WorkersActive(jobType, 1)
	defer p.observer.WorkersActive(jobType, -1)

	workerID := string(jobType) + "-" + strconv.Itoa(workerIdx)

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		job, err := p.store.ClaimNext(p.ctx, []models.JobType{jobType}, workerID, time.Now())
		if err != nil {
			logger.Log.Error("worker: claim failed", zap.String("type", string(jobType)), zap.Error(err))
			p.sleep(jobType)
			continue
		}
		if job == nil {
			p.sleep(jobType)
			continue
		}

		p.observer.JobClaimed(jobType)
		p.runJob(handler, job)
	}
}

func (p *Pool) sleep(jobType models.JobType) {
	select {
	case <-p.ctx.Done():
	case <-p.wake[jobType]:
	case <-time.After(p.cfg.PollInterval):
	}
}

func (p *Pool) runJob(handler Handler, job *models.Job) {
	start := time.Now()

	timeout := perJobTimeout(p.cfg.GenerationTimeoutBaseMs, job.Params)
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	result, err := handler(ctx, job)
	elapsed := time.Since(start)

	if err == nil {
		if storeErr := p.store.Succeed(context.Background(), job.ID, result, time.Now()); storeErr != nil {
			logger.Log.Error("worker: marking job succeeded", zap.String("jobId", job.ID), zap.Error(storeErr))
		}
		p.observer.JobSucceeded(job.Type, elapsed)
		return
	}

	if ctx.Err() == context.DeadlineExceeded {
		err = &apperrors.APIError{Code: apperrors.ErrTimedOut, Message: "job exceeded its wall-clock timeout"}
	}

	p.observer.JobFailed(job.Type, elapsed)

	if !shouldRetry(job, err) {
		if storeErr := p.store.Fail(context.Background(), job.ID, err, time.Now()); storeErr != nil {
			logger.Log.Error("worker: marking job failed", zap.String("jobId", job.ID), zap.Error(storeErr))
		}
		return
	}

	availableAt := time.Now().Add(backoffDelay(job.BackoffMs, job.Attempts))
	if storeErr := p.store.Retry(context.Background(), job.ID, err, availableAt); storeErr != nil {
		logger.Log.Error("worker: scheduling retry", zap.String("jobId", job.ID), zap.Error(storeErr))
	}
}

// shouldRetry implements spec.md §4.7 step 5's classification: retry
// unless attempts are exhausted or the error class is non-retryable.
func shouldRetry(job *models.Job, err error) bool {
	if job.Attempts >= job.MaxAttempts {
		return false
	}
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code.Retryable()
	}
	return true
}

// backoffDelay implements spec.md §4.7's `backoff_ms * 2^(attempts-1)`
// formula plus up to 20% jitter. Hand-rolled rather than reusing the
// cenkalti/backoff ExponentialBackOff the Transcoder Gateway's probe
// retries use: that library randomizes symmetrically around the interval,
// which does not match the spec's one-sided "plus up to 20%" jitter.
func backoffDelay(backoffMs int64, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	base := float64(backoffMs) * float64(uint64(1)<<uint(attempts-1))
	jitter := base * 0.20 * rand.Float64()
	return time.Duration(base+jitter) * time.Millisecond
}

// perJobTimeout implements spec.md §5's per-job wall-clock timeout:
// baseMs * (duration_sec / 60), falling back to the base alone when the
// job's params carry no duration_sec (e.g. a mix/vocals sub-job keyed on
// its parent's duration elsewhere).
func perJobTimeout(baseMs int, params models.JSONMap) time.Duration {
	durationSec, ok := params["durationSec"].(float64)
	if !ok || durationSec <= 0 {
		durationSec = 60
	}
	scaled := float64(baseMs) * (durationSec / 60)
	return time.Duration(scaled) * time.Millisecond
}

