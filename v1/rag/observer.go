package rag

import (
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

func (m *Manager) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if m == nil || m.observer == nil {
		return
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component: "rag",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
