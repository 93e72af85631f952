package config

import (
	"github.com/Aleph-Alpha/ragcore/v1/boltdb"
	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/embedding"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/minio"
	"github.com/Aleph-Alpha/ragcore/v1/pgvector"
	"github.com/Aleph-Alpha/ragcore/v1/qdrant"
	"github.com/Aleph-Alpha/ragcore/v1/rabbit"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/redis"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
)

const (
	BackendBolt     = "boltdb"
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"

	DefaultServiceName  = "ragcore"
	DefaultHTTPAddress  = ":8080"
	DefaultDatabaseName = "default_vectorstore"
)

// Config is the whole application configuration. Each section is the config
// type of the package it configures.
type Config struct {
	App App `yaml:"app"`

	Logger    logger.Config    `yaml:"logger"`
	Metrics   metrics.Config   `yaml:"metrics"`
	Tracer    tracer.Config    `yaml:"tracer"`
	Embedding embedding.Config `yaml:"embedding"`
	Chunker   chunker.Config   `yaml:"chunker"`
	RAG       rag.Config       `yaml:"rag"`
	VectorDB  vectordb.Config  `yaml:"vectordb"`

	BoltDB   boltdb.Config   `yaml:"boltdb"`
	Qdrant   qdrant.Config   `yaml:"qdrant"`
	Pgvector pgvector.Config `yaml:"pgvector"`

	// Redis enables the embedding cache when Host is set.
	Redis redis.Config `yaml:"redis"`

	// Minio enables imports from object storage when an endpoint is set.
	Minio minio.Config `yaml:"minio"`

	// Rabbit enables asynchronous ingestion jobs when a host is set.
	Rabbit rabbit.Config `yaml:"rabbit"`
	Worker worker.Config `yaml:"worker"`
}

// App holds the settings shared by several packages.
type App struct {
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	Env         string `yaml:"env" env:"APP_ENV"`

	// HTTPAddress is where the API server listens.
	HTTPAddress string `yaml:"http_address" env:"RAGCORE_HTTP_ADDRESS"`

	// Backend selects the collection store: boltdb, qdrant or pgvector.
	Backend string `yaml:"backend" env:"RAGCORE_BACKEND"`

	// DatabaseName names the index. It is copied into every backend section
	// that does not set its own.
	DatabaseName string `yaml:"database_name" env:"RAGCORE_DATABASE_NAME"`

	// MetricsEnabled starts the Prometheus endpoint.
	MetricsEnabled bool `yaml:"metrics_enabled" env:"RAGCORE_METRICS_ENABLED"`
}

// CacheEnabled reports whether embeddings are cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Host != ""
}

// ObjectStoreEnabled reports whether documents can be imported from MinIO.
func (c *Config) ObjectStoreEnabled() bool {
	return c.Minio.Enabled()
}

// JobsEnabled reports whether ingestion jobs go through RabbitMQ.
func (c *Config) JobsEnabled() bool {
	return c.Rabbit.Enabled()
}
