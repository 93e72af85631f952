package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// Retrieval is the ranked result of a query.
type Retrieval struct {
	Query      string         `json:"query"`
	Collection string         `json:"collection"`
	Hits       []vectordb.Hit `json:"hits"`
}

// Documents returns the hit texts in rank order.
func (r *Retrieval) Documents() []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Text
	}
	return out
}

// Pages returns the page labels aligned with Documents.
func (r *Retrieval) Pages() []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Metadata.PageLabel()
	}
	return out
}

// Retrieve embeds query and returns up to topK nearest records of the
// collection. topK <= 0 uses the configured default. An absent collection
// fails with vectordb.ErrCollectionNotFound.
func (m *Manager) Retrieve(ctx context.Context, query, collection string, topK int) (ret *Retrieval, err error) {
	collection = m.resolveCollection(collection)
	k := m.topK(topK)

	ctx, span := m.tracer.StartSpan(ctx, "rag.retrieve")
	start := time.Now()
	defer func() {
		hits := 0
		if ret != nil {
			hits = len(ret.Hits)
		}
		m.tracer.SetAttributes(span, map[string]interface{}{"collection": collection, "top_k": k, "hits": hits})
		m.tracer.RecordErrorOnSpan(span, err)
		span.End()
		m.observeOperation("retrieve", collection, time.Since(start), err, int64(hits))
	}()

	coll, err := m.store.Get(ctx, collection)
	if err != nil {
		return nil, err
	}

	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := coll.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	m.log.Debug("retrieved similar documents", nil, map[string]interface{}{
		"collection": collection, "hits": len(hits), "top_k": k,
	})
	return &Retrieval{Query: query, Collection: collection, Hits: hits}, nil
}

// BuildContext retrieves with the default topK and formats the hits for the
// agent. This is the retrieval tool exposed to the language model.
func (m *Manager) BuildContext(ctx context.Context, query, collection string) (string, error) {
	ret, err := m.Retrieve(ctx, query, collection, 0)
	if err != nil {
		return "", err
	}
	out := FormatContext(ret.Hits)
	m.log.Info("rag context created", nil, map[string]interface{}{"collection": ret.Collection, "matches": len(ret.Hits)})
	return out, nil
}
