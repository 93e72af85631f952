package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration from, in increasing precedence: defaults,
// the YAML file at path, and the environment. Variables in a .env file in the
// working directory are loaded first without overriding the real environment.
//
// An empty path skips the file. A path that does not exist is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{Chunker: chunker.DefaultConfig()}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.ServiceName == "" {
		c.App.ServiceName = DefaultServiceName
	}
	if c.App.HTTPAddress == "" {
		c.App.HTTPAddress = DefaultHTTPAddress
	}
	if c.App.Backend == "" {
		c.App.Backend = BackendBolt
	}
	if c.App.DatabaseName == "" {
		c.App.DatabaseName = DefaultDatabaseName
	}

	if c.Logger.ServiceName == "" {
		c.Logger.ServiceName = c.App.ServiceName
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.App.ServiceName
	}
	if c.Tracer.ServiceName == "" {
		c.Tracer.ServiceName = c.App.ServiceName
	}
	if c.Tracer.AppEnv == "" {
		c.Tracer.AppEnv = c.App.Env
	}

	if c.BoltDB.DatabaseName == "" {
		c.BoltDB.DatabaseName = c.App.DatabaseName
	}
	if c.Qdrant.DatabaseName == "" {
		c.Qdrant.DatabaseName = c.App.DatabaseName
	}
	if c.Pgvector.DatabaseName == "" {
		c.Pgvector.DatabaseName = c.App.DatabaseName
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Qdrant.VectorSize == 0 {
		c.Qdrant.VectorSize = c.VectorDB.Dimension
	}

	c.Embedding.ApplyDefaults()
	c.Chunker.ApplyDefaults()
	c.RAG.ApplyDefaults()
}

// Validate checks the sections that the selected components will use.
func (c *Config) Validate() error {
	var errs []error

	switch c.App.Backend {
	case BackendBolt:
	case BackendQdrant:
		if c.Qdrant.Endpoint == "" {
			errs = append(errs, fmt.Errorf("config: qdrant backend requires qdrant.endpoint"))
		}
	case BackendPgvector:
		if err := c.Pgvector.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown backend %q", c.App.Backend))
	}

	if c.VectorDB.Dimension < 0 {
		errs = append(errs, fmt.Errorf("config: vectordb.dimension must not be negative"))
	}
	if err := c.Embedding.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Chunker.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.RAG.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.ObjectStoreEnabled() && c.Minio.Connection.BucketName == "" {
		errs = append(errs, fmt.Errorf("config: minio.connection.bucket_name is required when minio is enabled"))
	}

	return errors.Join(errs...)
}
