package rag

import "fmt"

const (
	DefaultTopK             = 5
	DefaultEmbedConcurrency = 1
	DefaultCollectionName   = "resume"
)

// ExistingPolicy decides what ingestion does when the target collection
// already exists.
type ExistingPolicy string

const (
	// AppendToExisting logs a warning and appends the new chunks.
	AppendToExisting ExistingPolicy = "append"

	// SkipExisting logs a warning and ingests nothing.
	SkipExisting ExistingPolicy = "skip"
)

// ErrorMode decides how per-file failures affect an ingestion call.
type ErrorMode string

const (
	// FailFast stops at the first failing file and returns its error.
	FailFast ErrorMode = "fail_fast"

	// BestEffort records failures in the report and continues.
	BestEffort ErrorMode = "best_effort"
)

// Config holds the index manager settings.
type Config struct {
	// TopK is the number of hits used when a caller passes topK <= 0.
	TopK int `yaml:"top_k" env:"RAGCORE_TOP_K"`

	// DefaultCollection is used by BuildContext callers that do not name one.
	DefaultCollection string `yaml:"default_collection" env:"RAGCORE_DEFAULT_COLLECTION"`

	OnExisting ExistingPolicy `yaml:"on_existing" env:"RAGCORE_ON_EXISTING"`

	ErrorMode ErrorMode `yaml:"error_mode" env:"RAGCORE_ERROR_MODE"`

	// EmbedConcurrency bounds the parallel embedding calls per file. 1 embeds
	// sequentially.
	EmbedConcurrency int `yaml:"embed_concurrency" env:"RAGCORE_EMBED_CONCURRENCY"`
}

func DefaultConfig() Config {
	return Config{
		TopK:              DefaultTopK,
		DefaultCollection: DefaultCollectionName,
		OnExisting:        AppendToExisting,
		ErrorMode:         FailFast,
		EmbedConcurrency:  DefaultEmbedConcurrency,
	}
}

func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.DefaultCollection == "" {
		c.DefaultCollection = d.DefaultCollection
	}
	if c.OnExisting == "" {
		c.OnExisting = d.OnExisting
	}
	if c.ErrorMode == "" {
		c.ErrorMode = d.ErrorMode
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = d.EmbedConcurrency
	}
}

func (c Config) Validate() error {
	switch c.OnExisting {
	case AppendToExisting, SkipExisting:
	default:
		return fmt.Errorf("rag: unknown on_existing policy %q", c.OnExisting)
	}
	switch c.ErrorMode {
	case FailFast, BestEffort:
	default:
		return fmt.Errorf("rag: unknown error mode %q", c.ErrorMode)
	}
	return nil
}

// Option overrides Config for a single ingestion call.
type Option func(*Config)

func WithOnExisting(p ExistingPolicy) Option {
	return func(c *Config) { c.OnExisting = p }
}

func WithErrorMode(m ErrorMode) Option {
	return func(c *Config) { c.ErrorMode = m }
}

func WithEmbedConcurrency(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EmbedConcurrency = n
		}
	}
}
