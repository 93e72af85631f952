// Package api serves the collection index over HTTP with gin.
//
// Routes:
//
//	GET    /health
//	GET    /api/v1/collections
//	GET    /api/v1/collections/:name/items
//	DELETE /api/v1/collections/:name
//	POST   /api/v1/collections/:name/upload   multipart field "files"
//	POST   /api/v1/collections/:name/import   {"prefix": "..."}
//	POST   /api/v1/context                    {"query": "...", "collection": "...", "top_k": 5}
//
// Uploads and imports are written to a temporary directory that is removed
// when the request ends. They respond 200 with the upload result when every
// file was ingested and 500 with the same body otherwise. A missing
// collection is a 404.
package api
