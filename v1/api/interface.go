package api

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
)

// Index is the part of the rag.Manager the handlers use.
type Index interface {
	ListCollections(ctx context.Context) (map[string]struct{}, error)
	ListCollectionItems(ctx context.Context, collection string) ([]vectordb.Record, error)
	DeleteCollection(ctx context.Context, collection string) error
	IngestDirectory(ctx context.Context, dir, collection string) *rag.UploadResult
	Retrieve(ctx context.Context, query, collection string, topK int) (*rag.Retrieval, error)
}

var _ Index = (*rag.Manager)(nil)

// Importer downloads the documents under an object storage prefix into dir.
type Importer interface {
	FetchPrefix(ctx context.Context, prefix, dir string) ([]string, error)
}

// RequestRecorder receives one sample per handled request.
type RequestRecorder interface {
	IncrementRequests(route, status string)
	RecordRequestDuration(start time.Time, route string)
}

// JobQueue accepts ingestion jobs for asynchronous processing.
type JobQueue interface {
	Enqueue(ctx context.Context, job worker.Job) (worker.Job, error)
}

var _ JobQueue = (*worker.Enqueuer)(nil)
