package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/rabbit"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/google/uuid"
)

const headerJobID = "job_id"

// Enqueuer publishes ingestion jobs. The caller's trace context travels in
// the message headers so the worker span joins the same trace.
type Enqueuer struct {
	publisher   rabbit.Publisher
	tracer      *tracer.Tracer
	allowedRoot string
}

func NewEnqueuer(publisher rabbit.Publisher, t *tracer.Tracer) *Enqueuer {
	return &Enqueuer{publisher: publisher, tracer: t}
}

// WithAllowedRoot accepts dir jobs below root. Without it every dir job is
// rejected with ErrInvalidJob. The check is lexical; the worker resolves
// symlinks again before reading.
func (e *Enqueuer) WithAllowedRoot(root string) *Enqueuer {
	e.allowedRoot = root
	return e
}

// Enqueue validates job, assigns its ID and timestamp and publishes it. The
// returned job is the one that was sent.
func (e *Enqueuer) Enqueue(ctx context.Context, job Job) (Job, error) {
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	if job.Dir != "" {
		dir, err := resolveDir(e.allowedRoot, job.Dir, false)
		if err != nil {
			return Job{}, err
		}
		job.Dir = dir
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.EnqueuedAt = time.Now().UTC()

	body, err := json.Marshal(job)
	if err != nil {
		return Job{}, fmt.Errorf("worker: encode job: %w", err)
	}

	headers := map[string]interface{}{headerJobID: job.ID}
	for k, v := range e.tracer.GetCarrier(ctx) {
		headers[k] = v
	}

	if err := e.publisher.Publish(ctx, body, headers); err != nil {
		return Job{}, fmt.Errorf("worker: enqueue job %s: %w", job.ID, err)
	}
	return job, nil
}
