package embedding

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=types.go -destination=mock_embedder.go -package=embedding

// Embedder maps a text to a fixed-dimension vector. Implementations must be
// deterministic for a fixed model and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Cache stores vectors by an opaque key. A miss is reported as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vector []float32) error
}

// ErrEmbeddingFailure matches every error returned by the embedding client.
var ErrEmbeddingFailure = errors.New("embedding failure")

// Error describes a failed embedding request.
type Error struct {
	// StatusCode is the HTTP status returned by the provider, or 0 when the
	// request never got a response.
	StatusCode int
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	msg := "embedding: " + e.Msg
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrEmbeddingFailure }

func failure(status int, msg string, err error) error {
	return &Error{StatusCode: status, Msg: msg, Err: err}
}
