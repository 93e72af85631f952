// Package tracer wraps the OpenTelemetry SDK for the ragcore services.
//
// The ingestion and retrieval paths open spans named rag.ingest_pdfs,
// rag.ingest_texts and rag.retrieve. Export is optional and configured through
// the standard OTEL_EXPORTER_OTLP_* environment variables.
package tracer
