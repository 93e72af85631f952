// Package vectordb defines the collection store used for retrieval.
//
// # Overview
//
// A Store manages named collections of text records with embedding vectors.
// The storage engine is a Backend; three implementations exist:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        rag.Manager                          │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│              vectordb.Store / vectordb.Collection           │
//	│        (arity checks, not-found semantics, observer)        │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │ vectordb.Backend
//	        ┌──────────────────┼──────────────────┐
//	        ▼                  ▼                  ▼
//	┌───────────────┐  ┌───────────────┐  ┌───────────────┐
//	│ boltdb.Backend│  │ qdrant.Backend│  │pgvector.Backend│
//	└───────────────┘  └───────────────┘  └───────────────┘
//
// # Usage
//
//	store := vectordb.NewStore(backend, log)
//	coll, err := store.GetOrCreate(ctx, "resume")
//	err = coll.Add(ctx, vectordb.Batch{
//	    IDs:       []string{"cv_page_0"},
//	    Vectors:   [][]float32{vec},
//	    Texts:     []string{"Ilyan is an AI engineer"},
//	    Metadatas: []vectordb.Metadata{{Page: vectordb.PageOf(0), Source: "cv.pdf", FileName: "cv.pdf"}},
//	})
//	hits, err := coll.Query(ctx, queryVec, 3)
//
// # Semantics
//
//   - Collections are created lazily and live until Delete.
//   - Writes append. Adding an ID that already exists stores a second record.
//   - All vectors of a collection share one dimension; a mismatch fails with
//     ErrDimensionMismatch.
//   - Query returns at most topK hits ordered by ascending cosine distance.
//   - Operations on an absent collection fail with ErrCollectionNotFound.
package vectordb
