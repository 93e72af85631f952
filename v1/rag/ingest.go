package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"golang.org/x/sync/errgroup"
)

const (
	KindPDF  = "pdf"
	KindText = "text"
)

// IngestPDFs adds one chunk per non-empty page of every *.pdf in dir to the
// collection, creating it when needed.
func (m *Manager) IngestPDFs(ctx context.Context, dir, collection string, opts ...Option) (*IngestReport, error) {
	c, err := chunkerFor(m.pdfs, KindPDF)
	if err != nil {
		return nil, err
	}
	return m.ingest(ctx, KindPDF, c, dir, collection, opts)
}

// IngestTexts adds the split chunks of every *.txt below dir to the collection,
// creating it when needed.
func (m *Manager) IngestTexts(ctx context.Context, dir, collection string, opts ...Option) (*IngestReport, error) {
	c, err := chunkerFor(m.texts, KindText)
	if err != nil {
		return nil, err
	}
	return m.ingest(ctx, KindText, c, dir, collection, opts)
}

// IngestDirectory runs the upload flow: PDFs first, then text files, both in
// best-effort mode so one bad file does not hide the others. Success is true
// only when nothing failed.
func (m *Manager) IngestDirectory(ctx context.Context, dir, collection string) *UploadResult {
	result := &UploadResult{Errors: []string{}}
	collection = m.resolveCollection(collection)

	// The PDF pass may create the collection, so the existing-collection
	// policy is decided once for both passes.
	exists, err := m.store.Has(ctx, collection)
	if err != nil {
		result.addError(err)
		return result
	}
	if exists && m.cfg.OnExisting == SkipExisting {
		m.log.Warn("collection already exists, skipping upload", nil, map[string]interface{}{"collection": collection})
		result.Success = true
		return result
	}
	opts := []Option{WithErrorMode(BestEffort), WithOnExisting(AppendToExisting)}

	pdfReport, err := m.IngestPDFs(ctx, dir, collection, opts...)
	if pdfReport != nil {
		result.PDFCount = pdfReport.Ingested()
		result.Chunks += pdfReport.Chunks
		result.addError(pdfReport.Err())
	}
	result.addError(err)

	if ctx.Err() == nil {
		textReport, err := m.IngestTexts(ctx, dir, collection, opts...)
		if textReport != nil {
			result.TextCount = textReport.Ingested()
			result.Chunks += textReport.Chunks
			result.addError(textReport.Err())
		}
		result.addError(err)
	} else {
		result.addError(ctx.Err())
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (m *Manager) ingest(ctx context.Context, kind string, c Chunker, dir, collection string, opts []Option) (report *IngestReport, err error) {
	cfg := m.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	collection = m.resolveCollection(collection)

	report = &IngestReport{Collection: collection, Kind: kind}

	ctx, span := m.tracer.StartSpan(ctx, "rag.ingest_"+kindSpanName(kind))
	start := time.Now()
	defer func() {
		m.tracer.SetAttributes(span, map[string]interface{}{
			"collection": collection,
			"directory":  dir,
			"files":      len(report.Files),
			"chunks":     report.Chunks,
		})
		m.tracer.RecordErrorOnSpan(span, err)
		span.End()
		m.observeOperation("ingest_"+kind, collection, time.Since(start), err, int64(report.Chunks))
	}()

	unlock := m.locks.Lock(collection)
	defer unlock()

	fields := map[string]interface{}{"collection": collection, "directory": dir, "kind": kind}

	exists, err := m.store.Has(ctx, collection)
	if err != nil {
		return report, err
	}
	if exists {
		if cfg.OnExisting == SkipExisting {
			m.log.Warn("collection already exists, skipping ingestion", nil, fields)
			report.Skipped = true
			return report, nil
		}
		m.log.Warn("collection already exists, new documents will be appended", nil, fields)
	}

	files, err := c.Chunk(ctx, dir)
	if err != nil {
		return report, fmt.Errorf("ingest %s from %s: %w", kind, dir, err)
	}

	coll, err := m.store.GetOrCreate(ctx, collection)
	if err != nil {
		return report, err
	}

	m.log.Debug("ingesting documents", nil, map[string]interface{}{
		"collection": collection, "directory": dir, "kind": kind, "files": len(files),
	})

	for _, fc := range files {
		fr := FileReport{Path: fc.Path, EmptyPages: fc.EmptyPages, SkippedPages: fc.SkippedPages, Err: fc.Err}

		if fr.Err == nil {
			fr.Chunks, fr.Err = m.storeFile(ctx, coll, fc.Chunks, cfg.EmbedConcurrency)
		}
		report.Files = append(report.Files, fr)

		if fr.Err == nil {
			report.Chunks += fr.Chunks
			if m.counter != nil {
				m.counter.AddChunks(collection, kind, fr.Chunks)
			}
			continue
		}

		if isContextErr(fr.Err) {
			return report, fr.Err
		}
		if cfg.ErrorMode == FailFast {
			return report, fmt.Errorf("ingest %s: %w", fc.Path, fr.Err)
		}
		m.log.Warn("file not ingested", fr.Err, map[string]interface{}{"collection": collection, "file": fc.Path})
	}

	m.log.Info("documents added to collection", nil, map[string]interface{}{
		"collection": collection, "kind": kind, "files": report.Ingested(), "chunks": report.Chunks,
	})
	return report, nil
}

// storeFile embeds the chunks of one file and adds them in a single batch, so
// a file is either fully stored or not at all.
func (m *Manager) storeFile(ctx context.Context, coll *vectordb.Collection, chunks []chunker.Chunk, concurrency int) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := m.embedAll(ctx, chunks, concurrency)
	if err != nil {
		return 0, err
	}

	batch := vectordb.Batch{
		IDs:       make([]string, len(chunks)),
		Vectors:   vectors,
		Texts:     make([]string, len(chunks)),
		Metadatas: make([]vectordb.Metadata, len(chunks)),
	}
	for i, c := range chunks {
		batch.IDs[i] = c.ID
		batch.Texts[i] = c.Text
		batch.Metadatas[i] = c.Metadata
	}

	if err := coll.Add(ctx, batch); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// embedAll embeds every chunk, keeping input order. With concurrency > 1 the
// calls fan out through an errgroup; the first failure cancels the rest.
func (m *Manager) embedAll(ctx context.Context, chunks []chunker.Chunk, concurrency int) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	if concurrency <= 1 {
		for i, c := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := m.embedder.Embed(ctx, c.Text)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %s: %w", c.ID, err)
			}
			vectors[i] = v
		}
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := m.embedder.Embed(gctx, c.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", c.ID, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return vectors, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func kindSpanName(kind string) string {
	if kind == KindPDF {
		return "pdfs"
	}
	return "texts"
}
