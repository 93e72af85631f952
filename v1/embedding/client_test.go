package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientEmbedOpenAI(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Equal(t, []string{"hello"}, body.Input)

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	})

	client, err := NewClient(&Config{Endpoint: srv.URL + "/v1/", APIKey: "secret", Model: "test-model"})
	require.NoError(t, err)

	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "test-model", client.Model())
}

func TestClientEmbedAzure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/emb/embeddings", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	})

	client, err := NewClient(&Config{
		Provider: ProviderAzure,
		Endpoint: srv.URL + "/openai/deployments/emb",
		APIKey:   "azure-key",
	})
	require.NoError(t, err)

	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestClientEmbedFailures(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})
		client, err := NewClient(&Config{Endpoint: srv.URL})
		require.NoError(t, err)

		_, err = client.Embed(context.Background(), "hello")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmbeddingFailure))

		var embErr *Error
		require.True(t, errors.As(err, &embErr))
		assert.Equal(t, http.StatusTooManyRequests, embErr.StatusCode)
	})

	t.Run("empty data", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})
		client, err := NewClient(&Config{Endpoint: srv.URL})
		require.NoError(t, err)

		_, err = client.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrEmbeddingFailure)
	})

	t.Run("empty input makes no request", func(t *testing.T) {
		called := false
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })
		client, err := NewClient(&Config{Endpoint: srv.URL})
		require.NoError(t, err)

		_, err = client.Embed(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmbeddingFailure)
		assert.False(t, called)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client, err := NewClient(&Config{Endpoint: url})
		require.NoError(t, err)

		_, err = client.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrEmbeddingFailure)
	})
}

func TestConfigValidate(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://x", Provider: "bogus"})
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://x", Provider: ProviderAzure})
	assert.Error(t, err, "azure needs a key")
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("EMBEDDING_ENDPOINT", "http://localhost:8080")
	t.Setenv("EMBEDDING_HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("EMBEDDING_MODEL", "")

	cfg := NewConfig()
	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, 5, cfg.HTTPTimeoutS)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
}
