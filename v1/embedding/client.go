package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is the OpenAI-compatible embedding provider.
type Client struct {
	cfg        Config
	url        string
	httpClient *http.Client
}

var _ Embedder = (*Client)(nil)

// NewClient validates cfg and returns a ready client. No network call is made.
func NewClient(cfg *Config) (*Client, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	return &Client{
		cfg:        c,
		url:        embeddingsURL(c),
		httpClient: &http.Client{Timeout: time.Duration(c.HTTPTimeoutS) * time.Second},
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// Embed requests the embedding of a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, failure(0, "empty input", nil)
	}

	reqBody := map[string]any{"input": []string{text}}
	if c.cfg.Provider != ProviderAzure {
		reqBody["model"] = c.cfg.Model
	}

	var parsed struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	if err := c.postJSON(ctx, reqBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, failure(0, "provider returned no embedding", nil)
	}

	return parsed.Data[0].Embedding, nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func embeddingsURL(cfg Config) string {
	base := strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Provider == ProviderAzure {
		return fmt.Sprintf("%s/embeddings?api-version=%s", base, cfg.APIVersion)
	}
	return base + "/embeddings"
}
