package vectordb

import (
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

func (s *Store) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if s == nil || s.observer == nil {
		return
	}

	s.observer.ObserveOperation(observability.OperationContext{
		Component: "vectordb",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
