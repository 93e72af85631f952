package redis

import "time"

// Config defines the connection to a standalone Redis server and how
// embeddings are cached in it.
type Config struct {
	// Host is the Redis server hostname. Default: "localhost"
	Host string `yaml:"host" env:"REDIS_HOST"`

	// Port is the Redis server port. Default: 6379
	Port int `yaml:"port" env:"REDIS_PORT"`

	Username string `yaml:"username" env:"REDIS_USERNAME"`

	Password string `yaml:"password" env:"REDIS_PASSWORD"`

	DB int `yaml:"db" env:"REDIS_DB"`

	// PoolSize is the maximum number of socket connections.
	// Default: 10 per CPU
	PoolSize int `yaml:"pool_size"`

	// MaxRetries is the number of retries before giving up. Default: 3
	MaxRetries int `yaml:"max_retries"`

	// DialTimeout for establishing new connections. Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout for socket reads. Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout for socket writes. Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// KeyPrefix namespaces every cache key. Default: "ragcore:emb:"
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX"`

	// TTL expires cached vectors. 0 keeps them until evicted.
	TTL time.Duration `yaml:"ttl" env:"REDIS_TTL"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig holds the TLS settings of the connection.
type TLSConfig struct {
	Enabled bool `yaml:"enabled" env:"REDIS_TLS_ENABLED"`

	// CACertPath verifies the server certificate.
	CACertPath string `yaml:"ca_cert_path"`

	// ClientCertPath and ClientKeyPath enable mutual TLS.
	ClientCertPath string `yaml:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path"`

	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	ServerName string `yaml:"server_name"`
}

const (
	DefaultHost        = "localhost"
	DefaultPort        = 6379
	DefaultMaxRetries  = 3
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 3 * time.Second
	DefaultKeyPrefix   = "ragcore:emb:"
)

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}
