package qdrant

import (
	"time"
)

// Config holds the connection and layout settings of the Qdrant backend.
type Config struct {
	// Endpoint is the hostname of the Qdrant server (without scheme).
	Endpoint string `yaml:"endpoint" env:"QDRANT_ENDPOINT"`

	// Port is the gRPC port, 6334 by default.
	Port int `yaml:"port" env:"QDRANT_PORT"`

	ApiKey string `yaml:"api_key" env:"QDRANT_API_KEY"`

	UseTLS bool `yaml:"use_tls" env:"QDRANT_USE_TLS"`

	// DatabaseName prefixes every collection as <DatabaseName>__<collection>,
	// so several indexes can share one server.
	DatabaseName string `yaml:"database_name" env:"RAGCORE_DATABASE_NAME"`

	// VectorSize is used when a collection is created before its first write.
	// 0 defers creation until the first Add reveals the dimension.
	VectorSize int `yaml:"vector_size" env:"QDRANT_VECTOR_SIZE"`

	// Timeout bounds the startup health check, including retries.
	Timeout time.Duration `yaml:"timeout" env:"QDRANT_TIMEOUT"`

	CheckCompatibility bool `yaml:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`
}

// DefaultConfig returns a configuration for a local Qdrant instance.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               6334,
		DatabaseName:       "default_vectorstore",
		Timeout:            30 * time.Second,
		CheckCompatibility: true,
	}
}

// FromEndpoint returns DefaultConfig pointing at host.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithDatabaseName(name string) *Config {
	c.DatabaseName = name
	return c
}

func (c *Config) WithVectorSize(size int) *Config {
	c.VectorSize = size
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}
