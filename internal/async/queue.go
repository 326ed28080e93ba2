package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one batch waiting for the worker.
type Job struct {
	BatchID     uuid.UUID
	Docs        []ocr.Document
	Catalogue   []entity.CatalogueEntry
	Instruction string
	SubmittedAt time.Time

	// Events, when set, receives the batch's events and is closed when the batch ends.
	// The receiver must drain it.
	Events chan<- core.BatchEvent
	// Done, when set, receives the summary once.
	Done chan<- Summary
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// BatchQueue runs queued batches one at a time so documents are processed strictly in order.
type BatchQueue struct {
	importer *Importer
	logger   *slog.Logger
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*BatchQueue)

func WithQueueSize(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithBatchTimeout(d time.Duration) Option {
	return func(q *BatchQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewBatchQueue(importer *Importer, logger *slog.Logger, opts ...Option) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		importer: importer,
		logger:   logger,
		timeout:  time.Hour,
		ch:       make(chan Job, 16),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("batch worker started")
			for job := range q.ch {
				q.run(job)
			}
			q.logger.Info("batch worker stopped")
		}()
	})
}

func (q *BatchQueue) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithBatchID(ctx, job.BatchID.String())

	q.logger.Info("batch started", "batch_id", job.BatchID, "docs", len(job.Docs), "waited_ms", time.Since(job.SubmittedAt).Milliseconds())

	var onEvent func(core.BatchEvent)
	if job.Events != nil {
		defer close(job.Events)
		onEvent = func(ev core.BatchEvent) { job.Events <- ev }
	}
	sum := q.importer.Run(ctx, job.BatchID, job.Docs, job.Catalogue, job.Instruction, onEvent)
	if job.Done != nil {
		job.Done <- sum
	}
}

// Enqueue adds a batch. It blocks while the queue is full and fails once Shutdown started.
func (q *BatchQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "batch_id", job.BatchID)
		return ErrQueueClosed
	}
	if job.BatchID == uuid.Nil {
		job.BatchID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued batch", "batch_id", job.BatchID, "docs", len(job.Docs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting batches and waits for queued ones to finish, or for ctx.
func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
