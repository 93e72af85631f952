package api

const (
	DefaultAddress        = ":8080"
	DefaultMaxUploadBytes = 64 << 20
)

// Config holds the HTTP server settings.
type Config struct {
	// Address is the host:port to listen on.
	Address string `yaml:"address" env:"RAGCORE_HTTP_ADDRESS"`

	// MaxUploadBytes bounds the multipart memory used by uploads; larger
	// parts spill to temporary files.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"RAGCORE_MAX_UPLOAD_BYTES"`

	// Debug switches gin to debug mode.
	Debug bool `yaml:"debug" env:"RAGCORE_HTTP_DEBUG"`
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
}
