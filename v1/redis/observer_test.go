package redis

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/observability"
	"github.com/redis/go-redis/v9"
)

// TestObserver records every observed operation.
type TestObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (t *TestObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, ctx)
}

func (t *TestObserver) GetOperations() []observability.OperationContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]observability.OperationContext, len(t.operations))
	copy(out, t.operations)
	return out
}

func TestObserveOperationNilObserverNoPanic(t *testing.T) {
	r := &RedisClient{}
	r.observeOperation("get", "ragcore:emb:k", "", 10*time.Millisecond, nil, 0, nil)
}

func TestObserveOperationCallsObserver(t *testing.T) {
	obs := &TestObserver{}
	r := (&RedisClient{}).WithObserver(obs)

	r.observeOperation("set", "ragcore:emb:k", "", 10*time.Millisecond, nil, 100, map[string]interface{}{"ttl": "60s"})

	ops := obs.GetOperations()
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Component != "redis" || ops[0].Operation != "set" {
		t.Fatalf("unexpected operation %s/%s", ops[0].Component, ops[0].Operation)
	}
	if ops[0].Resource != "ragcore:emb:k" {
		t.Fatalf("expected resource ragcore:emb:k, got %q", ops[0].Resource)
	}
	if ops[0].Metadata["ttl"] != "60s" {
		t.Fatalf("expected metadata ttl=60s, got %#v", ops[0].Metadata)
	}
}

func TestIgnoreNil(t *testing.T) {
	if ignoreNil(redis.Nil) != nil {
		t.Fatalf("a missing key must not count as a failure")
	}
	boom := errors.New("boom")
	if !errors.Is(ignoreNil(boom), boom) {
		t.Fatalf("other errors must pass through")
	}
	if !IsNilError(redis.Nil) {
		t.Fatalf("IsNilError(redis.Nil) = false")
	}
}

func TestCreateTLSConfigServerName(t *testing.T) {
	cfg, err := createTLSConfig(TLSConfig{Enabled: true}, "cache.internal")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerName != "cache.internal" {
		t.Fatalf("expected default server name, got %q", cfg.ServerName)
	}

	if _, err := createTLSConfig(TLSConfig{CACertPath: "/does/not/exist"}, ""); err == nil {
		t.Fatalf("expected error for missing CA file")
	}
}
