package minio

import "time"

const connectionHealthCheckInterval = 30 * time.Second

// Config holds the object storage connection used to import documents.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
}

// ConnectionConfig contains the MinIO server address, credentials and bucket.
type ConnectionConfig struct {
	// Endpoint is host:port without scheme.
	Endpoint string `yaml:"endpoint" env:"MINIO_ENDPOINT"`

	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_ACCESS_KEY"`

	UseSSL bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Region string `yaml:"region" env:"MINIO_REGION"`

	// BucketName is the bucket documents are imported from.
	BucketName string `yaml:"bucket_name" env:"MINIO_BUCKET_NAME"`

	// AccessBucketCreation creates the bucket on startup when it is missing.
	AccessBucketCreation bool `yaml:"access_bucket_creation" env:"MINIO_ACCESS_BUCKET_CREATION"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool {
	return c.Connection.Endpoint != ""
}
