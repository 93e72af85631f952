package redis

import (
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// observeOperation notifies the observer about a command if one is configured.
// A cache miss is reported as a success with metadata hit=false.
func (r *RedisClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component:   "redis",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
