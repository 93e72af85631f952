package chunker

import "fmt"

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// PageErrorMode decides what a failing PDF page does to its file.
type PageErrorMode string

const (
	// SkipPage logs the failure and continues with the next page.
	SkipPage PageErrorMode = "skip"

	// FailFile aborts the file on the first failing page.
	FailFile PageErrorMode = "fail"
)

// Config controls both chunkers.
type Config struct {
	ChunkSize    int           `yaml:"chunk_size" env:"CHUNKER_CHUNK_SIZE"`
	ChunkOverlap int           `yaml:"chunk_overlap" env:"CHUNKER_CHUNK_OVERLAP"`
	PageErrors   PageErrorMode `yaml:"page_errors" env:"CHUNKER_PAGE_ERRORS"`
}

// DefaultConfig returns 500/100 splitting with skipped bad pages.
func DefaultConfig() Config {
	return Config{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap, PageErrors: SkipPage}
}

func (c *Config) ApplyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.PageErrors == "" {
		c.PageErrors = SkipPage
	}
}

func (c Config) Validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunker: overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	switch c.PageErrors {
	case SkipPage, FailFile:
		return nil
	default:
		return fmt.Errorf("chunker: unknown page error mode %q", c.PageErrors)
	}
}
