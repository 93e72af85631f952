// Package pgvector stores collections in PostgreSQL using the pgvector
// extension.
//
// Each index lives in its own schema named after the configured database
// name. The schema holds two tables: collections (name, dimension) and
// chunks (one row per stored chunk with its embedding). Chunks are keyed by a
// bigserial id, so adding a chunk id twice keeps both rows. Queries rank by
// the <=> cosine distance operator.
//
// The dimension of a collection is fixed by its first write. Writes lock the
// collection row and insert inside one transaction.
//
// Basic usage:
//
//	backend, err := pgvector.NewBackend(pgvector.Config{
//	    Connection:   pgvector.Connection{Host: "localhost", User: "rag", Password: "rag", DbName: "rag"},
//	    DatabaseName: "resumes",
//	})
//	if err != nil {
//	    return err
//	}
//	store := vectordb.NewStore(backend, log)
//
// The FXModule runs a health monitor that reconnects when a ping fails.
package pgvector
