// Package worker moves directory ingestion off the request path.
//
// An Enqueuer publishes Jobs to RabbitMQ. A Worker consumes them, downloads
// the documents of prefix jobs from MinIO into a temporary directory, and
// runs rag.Manager.IngestDirectory on the result. Successful jobs are acked.
// Failed jobs are rejected and end up in the dead letter queue when one is
// configured. Jobs interrupted by shutdown are requeued.
//
// The trace context of the enqueuing request is carried in the message
// headers, so the "worker.ingest_job" span continues the caller's trace.
package worker
