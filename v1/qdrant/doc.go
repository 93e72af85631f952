// Package qdrant implements vectordb.Backend on Qdrant through the official
// gRPC client (github.com/qdrant/go-client).
//
// # Layout
//
// Each logical collection maps to the Qdrant collection
// <DatabaseName>__<collection> with cosine distance. Every record becomes a
// point with a random UUID id; the chunk id, text and metadata travel in the
// payload:
//
//	chunk_id, text, source, file_name, page
//
// so re-adding a chunk id stores a second point instead of overwriting the
// first.
//
// # Dimensions
//
// Qdrant fixes the vector size at creation. When neither the caller nor
// Config.VectorSize knows it, CreateCollection only registers the name and the
// collection is created by the first Add with the size of its vectors.
//
// # Writes
//
// Add upserts in batches of 200 points with Wait=true, so a returned Add is
// visible to the next Query.
//
// # Connecting
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: qdrant.FromEndpoint("localhost").WithDatabaseName("resumes"),
//	})
//
// The constructor retries the health check with exponential backoff until
// Config.Timeout elapses.
//
// Log lines are prefixed with [Qdrant].
package qdrant
