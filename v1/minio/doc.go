// Package minio imports documents from a MinIO (or any S3 compatible) bucket.
//
// FetchPrefix downloads the .pdf and .txt objects below a key prefix into a
// local directory, which the ingestion pipeline then treats like an upload.
// The client re-validates its connection every 30 seconds and reconnects
// when validation fails.
package minio
