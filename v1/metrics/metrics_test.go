package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

func TestObserveOperationCountsByStatus(t *testing.T) {
	m := NewMetrics(Config{Namespace: "ragcore", ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{Component: "rag", Operation: "retrieve", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "rag", Operation: "retrieve", Error: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("rag", "retrieve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("rag", "retrieve", "error")))
}

func TestAddChunksIgnoresNonPositive(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.AddChunks("resume", "pdf", 0)
	m.AddChunks("resume", "pdf", 3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.chunksIngested.WithLabelValues("resume", "pdf")))
}

func TestMetricsEndpointExposesServiceLabel(t *testing.T) {
	m := NewMetrics(Config{Namespace: "ragcore", ServiceName: "ragcore-test"})
	m.IncrementRequests("/api/v1/context", "2xx")

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ragcore_http_requests_total{route="/api/v1/context",service="ragcore-test",status="2xx"} 1`), body)
}

func TestDefaultAddress(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}
