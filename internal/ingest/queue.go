// ABOUTME: In-process job queue with a fixed worker pool for document ingestion
// ABOUTME: Jobs carry hard and soft timeouts; enqueue is fire-and-forget
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is one unit of ingestion work
type Job struct {
	ID         string
	DocumentID int64
	Payload    []byte
}

// Queue dispatches ingestion jobs to a fixed pool of workers. Buffering
// decouples upload latency from processing time.
type Queue struct {
	pipeline    *Pipeline
	jobs        chan Job
	wg          sync.WaitGroup
	logger      *slog.Logger
	jobTimeout  time.Duration
	softTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

const queueDepthPerWorker = 16

// NewQueue starts workers immediately and returns the running queue
func NewQueue(pipeline *Pipeline, workers int, jobTimeout, softTimeout time.Duration, logger *slog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		pipeline:    pipeline,
		jobs:        make(chan Job, workers*queueDepthPerWorker),
		logger:      logger,
		jobTimeout:  jobTimeout,
		softTimeout: softTimeout,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Enqueue submits a document for background processing and returns the
// job ID. The caller does not wait: outcomes land on the document row.
func (q *Queue) Enqueue(documentID int64, payload []byte) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", fmt.Errorf("queue is shut down")
	}

	job := Job{ID: uuid.New().String(), DocumentID: documentID, Payload: payload}
	select {
	case q.jobs <- job:
		q.logger.Info("job enqueued", "job_id", job.ID, "document_id", documentID)
		return job.ID, nil
	default:
		return "", fmt.Errorf("ingestion queue is full")
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to drain,
// or for ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue shutdown interrupted: %w", ctx.Err())
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(id, job)
	}
}

func (q *Queue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
	defer cancel()

	// The soft timeout only warns; the hard timeout cancels the context.
	soft := time.AfterFunc(q.softTimeout, func() {
		q.logger.Warn("job exceeded soft time limit",
			"job_id", job.ID, "document_id", job.DocumentID, "soft_limit", q.softTimeout)
	})
	defer soft.Stop()

	start := time.Now()
	if err := q.pipeline.Process(ctx, job.DocumentID, job.Payload); err != nil {
		q.logger.Error("job failed",
			"job_id", job.ID, "document_id", job.DocumentID, "worker", workerID,
			"elapsed", time.Since(start), "error", err)
		return
	}
	q.logger.Info("job completed",
		"job_id", job.ID, "document_id", job.DocumentID, "worker", workerID,
		"elapsed", time.Since(start))
}
