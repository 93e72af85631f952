package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/Aleph-Alpha/ragcore/v1/rabbit"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"golang.org/x/sync/errgroup"
)

// Indexer ingests a local directory. *rag.Manager implements it.
type Indexer interface {
	IngestDirectory(ctx context.Context, dir, collection string) *rag.UploadResult
}

// Importer downloads the documents under an object storage prefix into dir.
type Importer interface {
	FetchPrefix(ctx context.Context, prefix, dir string) ([]string, error)
}

var _ Indexer = (*rag.Manager)(nil)

// Worker consumes ingestion jobs. A job that succeeds is acked. A job that
// fails is rejected without requeue, which moves it to the dead letter
// queue. A job interrupted by shutdown is requeued.
type Worker struct {
	cfg      Config
	consumer rabbit.Consumer
	index    Indexer
	importer Importer
	log      logger.Logger
	tracer   *tracer.Tracer
	observer observability.Observer
}

// NewWorker builds a worker. importer may be nil, in which case prefix jobs fail.
func NewWorker(cfg Config, consumer rabbit.Consumer, index Indexer, importer Importer, log logger.Logger) *Worker {
	cfg.applyDefaults()
	return &Worker{
		cfg:      cfg,
		consumer: consumer,
		index:    index,
		importer: importer,
		log:      log,
	}
}

func (w *Worker) WithTracer(t *tracer.Tracer) *Worker {
	w.tracer = t
	return w
}

func (w *Worker) WithObserver(o observability.Observer) *Worker {
	w.observer = o
	return w
}

// Run processes jobs until ctx is done and every in-flight job has finished.
func (w *Worker) Run(ctx context.Context) error {
	wg := &sync.WaitGroup{}
	msgs := w.consumer.Consume(ctx, wg)

	w.log.Info("Worker started", nil, map[string]interface{}{"concurrency": w.cfg.Concurrency})

	g := &errgroup.Group{}
	for i := 0; i < w.cfg.Concurrency; i++ {
		g.Go(func() error {
			for msg := range msgs {
				w.handle(ctx, msg)
			}
			return nil
		})
	}

	err := g.Wait()
	wg.Wait()
	w.log.Info("Worker stopped", nil, nil)
	return err
}

func (w *Worker) handle(ctx context.Context, msg rabbit.Message) {
	var job Job
	if err := json.Unmarshal(msg.Body(), &job); err != nil {
		w.log.Error("Dropping undecodable job", err, map[string]interface{}{"body": truncate(string(msg.Body()), 200)})
		w.settle(msg, false, false)
		return
	}

	ctx = w.tracer.SetCarrierOnContext(ctx, carrierFrom(msg.Header()))
	ctx, span := w.tracer.StartSpan(ctx, "worker.ingest_job")
	defer span.End()
	w.tracer.SetAttributes(span, map[string]interface{}{
		"job.id":         job.ID,
		"job.collection": job.Collection,
		"job.source":     job.source(),
	})

	start := time.Now()
	result, err := w.Process(ctx, job)
	w.observeOperation("process_job", job.Collection, job.source(), time.Since(start), err, int64(chunksOf(result)))

	fields := map[string]interface{}{
		"job_id":     job.ID,
		"collection": job.Collection,
		"source":     job.source(),
		"duration":   time.Since(start).String(),
	}
	if result != nil {
		fields["pdf_count"] = result.PDFCount
		fields["text_count"] = result.TextCount
		fields["chunks"] = result.Chunks
	}

	switch {
	case err == nil:
		w.log.Info("Job done", nil, fields)
		w.settle(msg, true, false)
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		w.log.Warn("Job interrupted, requeueing", err, fields)
		w.settle(msg, false, true)
	default:
		w.tracer.RecordErrorOnSpan(span, err)
		w.log.Error("Job failed", err, fields)
		w.settle(msg, false, false)
	}
}

// Process runs one job to completion. The result is nil when the job failed
// before ingestion started.
func (w *Worker) Process(ctx context.Context, job Job) (*rag.UploadResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	dir := job.Dir
	if dir != "" {
		resolved, err := resolveDir(w.cfg.AllowedRoot, dir, true)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	if job.Prefix != "" {
		if w.importer == nil {
			return nil, ErrNoImporter
		}

		tmp, err := os.MkdirTemp("", "ragcore-job-*")
		if err != nil {
			return nil, fmt.Errorf("worker: staging dir: %w", err)
		}
		defer os.RemoveAll(tmp)

		paths, err := w.importer.FetchPrefix(ctx, job.Prefix, tmp)
		if err != nil {
			return nil, fmt.Errorf("worker: fetch %q: %w", job.Prefix, err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w %q", ErrEmptyPrefix, job.Prefix)
		}
		dir = tmp
	}

	result := w.index.IngestDirectory(ctx, dir, job.Collection)
	if !result.Success {
		return result, fmt.Errorf("worker: ingest %s: %s", job.source(), strings.Join(result.Errors, "; "))
	}
	return result, nil
}

func (w *Worker) settle(msg rabbit.Message, ack, requeue bool) {
	var err error
	if ack {
		err = msg.AckMsg()
	} else {
		err = msg.NackMsg(requeue)
	}
	if err != nil {
		w.log.Warn("Failed to settle job message", err, map[string]interface{}{"ack": ack, "requeue": requeue})
	}
}

func (w *Worker) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if w.observer == nil {
		return
	}
	w.observer.ObserveOperation(observability.OperationContext{
		Component:   "worker",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

func carrierFrom(headers map[string]interface{}) map[string]string {
	carrier := make(map[string]string, len(headers))
	for k, v := range headers {
		if s, ok := v.(string); ok {
			carrier[k] = s
		}
	}
	return carrier
}

func chunksOf(r *rag.UploadResult) int {
	if r == nil {
		return 0
	}
	return r.Chunks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
