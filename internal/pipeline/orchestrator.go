package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/stats"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("conversion queue is full")
	// ErrStopped is returned by Submit after Stop, and recorded on jobs
	// that were still queued when the pipeline stopped.
	ErrStopped = errors.New("conversion pipeline stopped")
)

const defaultCleanupInterval = 5 * time.Minute

// Orchestrator manages the conversion worker pool.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	conv  *convert.Converter
	stats *stats.Conversions
	log   *slog.Logger
	cfg   config.Config

	cleanupInterval time.Duration

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, conv *convert.Converter, st *stats.Conversions, log *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		queue:           make(chan *Job, cfg.MaxQueueSize),
		conv:            conv,
		stats:           st,
		log:             log,
		cfg:             cfg,
		cleanupInterval: defaultCleanupInterval,
	}
	if cfg.JobTTL > 0 && cfg.JobTTL/2 < o.cleanupInterval {
		o.cleanupInterval = cfg.JobTTL / 2
	}
	o.jobs = NewJobStore(cfg.JobTTL, o.evict)
	return o
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Info("evicted expired jobs", "count", n)
				}
			}
		}
	}()
}

// Stop shuts the pipeline down. Jobs still queued fail with ErrStopped,
// and every tracked job's workspace is removed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	for job := range o.queue {
		job.Finish(convert.Result{}, ErrStopped)
	}
	// Nothing outlives the process: results never downloaded go too.
	if n := o.jobs.Drain(); n > 0 {
		o.log.Info("removed remaining jobs", "count", n)
	}
}

// Submit queues a job for processing. On error the job is not tracked and
// the caller still owns its workspace.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		o.jobs.Delete(job.ID)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Release forgets a job and removes its workspace.
func (o *Orchestrator) Release(job *Job) {
	o.jobs.Delete(job.ID)
	o.evict(job)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the latency window fed by the workers.
func (o *Orchestrator) Stats() *stats.Conversions {
	return o.stats
}

func (o *Orchestrator) evict(job *Job) {
	if ws := job.Workspace(); ws != nil {
		if err := ws.Remove(); err != nil {
			o.log.Warn("workspace cleanup failed", "job_id", job.ID, "error", err)
		}
	}
}
