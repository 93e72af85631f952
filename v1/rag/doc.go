// Package rag is the retrieval-augmented context engine.
//
// Manager ingests directories of PDF and text files into named collections
// (chunk, embed, add) and turns a question into a context string (embed,
// top-K query, format):
//
//	report, err := mgr.IngestPDFs(ctx, "./data", "resume")
//	ctx, err := mgr.BuildContext(ctx, "What does Ilyan work on?", "resume")
//
// Ingestion into the same collection is serialized inside the process. Every
// file is stored with a single Add, so a file is either fully present or
// absent, and a cancelled context stops between chunks while keeping the
// files already stored.
//
// The context format is:
//
//	To provide some context, here are some relevant documents:
//
//	Potentially related Document: <text>
//	Page number: <page>
//
// repeated per hit in rank order. Without hits, NoMatchesMarker follows the
// preamble.
package rag
