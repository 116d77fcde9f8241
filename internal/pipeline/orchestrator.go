package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nitishgarg26/pdf-mcq/internal/config"
	"github.com/nitishgarg26/pdf-mcq/internal/docgen"
	"github.com/nitishgarg26/pdf-mcq/internal/equation"
	"github.com/nitishgarg26/pdf-mcq/internal/memo"
	"github.com/nitishgarg26/pdf-mcq/internal/metrics"
	"github.com/nitishgarg26/pdf-mcq/internal/ocr"
	"github.com/nitishgarg26/pdf-mcq/internal/pagesource"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// Deps are the collaborators the extraction pipeline is built from. Raster,
// Equation, and Cache may be nil; the pipeline degrades instead of failing.
type Deps struct {
	Engine   *segment.Engine
	OCR      ocr.Engine
	Raster   pagesource.Rasterizer
	Equation equation.Recognizer
	Cache    *memo.Store
	DocOpts  docgen.Options
}

// Orchestrator owns the job registry, the work queue, and the worker pool.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	deps    Deps
	ocrStat *metrics.Latency
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start before submitting.
func NewOrchestrator(cfg config.Config, deps Deps, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		deps:    deps,
		ocrStat: metrics.NewLatency(time.Hour),
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines and the job-store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.deps, o.ocrStat, o.cfg, o.log)
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

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewJob registers a fresh queued job for an upload.
func (o *Orchestrator) NewJob(filename string, data []byte) *Job {
	now := time.Now()
	job := &Job{
		ID:        newJobID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)
	return job
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// ListJobs returns snapshots of all live jobs.
func (o *Orchestrator) ListJobs() []JobSnapshot {
	return o.jobs.List()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// OCRStats reports recognition latency over the rolling window.
func (o *Orchestrator) OCRStats() metrics.Snapshot {
	return o.ocrStat.Snapshot()
}
