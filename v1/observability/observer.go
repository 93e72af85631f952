// Package observability defines the hook that clients in this module use to
// report the operations they perform. A concrete Observer (for example the
// Prometheus-backed one in the metrics package) turns these notifications into
// metrics; passing a nil Observer disables reporting.
package observability

import "time"

// Observer receives a notification for every observed operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single operation performed by a component.
type OperationContext struct {
	// Component is the reporting package, e.g. "rag", "redis", "boltdb".
	Component string

	// Operation is the action performed, e.g. "ingest_pdfs", "query", "get".
	Operation string

	// Resource is the primary target, usually a collection name or cache key.
	Resource string

	// SubResource carries secondary context such as a file name.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the outcome; nil means success.
	Error error

	// Size is an operation specific magnitude (chunks written, hits returned, bytes).
	Size int64

	// Metadata holds any additional attributes.
	Metadata map[string]interface{}
}

// Notify calls o.ObserveOperation when o is non-nil.
func Notify(o Observer, ctx OperationContext) {
	if o == nil {
		return
	}
	o.ObserveOperation(ctx)
}
