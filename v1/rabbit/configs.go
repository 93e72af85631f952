package rabbit

const (
	DefaultPort          = 5672
	DefaultExchangeName  = "ragcore.ingest"
	DefaultExchangeType  = "direct"
	DefaultRoutingKey    = "ingest"
	DefaultQueueName     = "ragcore.ingest"
	DefaultPrefetchCount = 1
	DefaultContentType   = "application/json"
)

// Config holds the broker connection and the topology ingestion jobs travel
// through. The topology is declared on every (re)connect.
type Config struct {
	Connection Connection `yaml:"connection"`
	Channel    Channel    `yaml:"channel"`
	DeadLetter DeadLetter `yaml:"dead_letter"`
}

// Connection contains the broker address, credentials and TLS settings.
type Connection struct {
	Host     string `yaml:"host" env:"RABBITMQ_HOST"`
	Port     int    `yaml:"port" env:"RABBITMQ_PORT"`
	User     string `yaml:"user" env:"RABBITMQ_USER"`
	Password string `yaml:"password" env:"RABBITMQ_PASSWORD"`

	// IsSSLEnabled dials amqps.
	IsSSLEnabled bool `yaml:"ssl_enabled" env:"RABBITMQ_SSL_ENABLED"`

	// UseCert sends a client certificate. Requires IsSSLEnabled.
	UseCert        bool   `yaml:"use_cert" env:"RABBITMQ_USE_CERT"`
	CACertPath     string `yaml:"ca_cert_path" env:"RABBITMQ_CA_CERT_PATH"`
	ClientCertPath string `yaml:"client_cert_path" env:"RABBITMQ_CLIENT_CERT_PATH"`
	ClientKeyPath  string `yaml:"client_key_path" env:"RABBITMQ_CLIENT_KEY_PATH"`
	ServerName     string `yaml:"server_name" env:"RABBITMQ_SERVER_NAME"`
}

// Channel names the exchange and queue jobs are published to and consumed from.
type Channel struct {
	ExchangeName string `yaml:"exchange_name" env:"RABBITMQ_EXCHANGE_NAME"`

	// ExchangeType is one of direct, fanout, topic or headers.
	ExchangeType string `yaml:"exchange_type" env:"RABBITMQ_EXCHANGE_TYPE"`

	RoutingKey string `yaml:"routing_key" env:"RABBITMQ_ROUTING_KEY"`
	QueueName  string `yaml:"queue_name" env:"RABBITMQ_QUEUE_NAME"`

	// PrefetchCount bounds unacknowledged deliveries per consumer.
	PrefetchCount int `yaml:"prefetch_count" env:"RABBITMQ_PREFETCH_COUNT"`

	ContentType string `yaml:"content_type" env:"RABBITMQ_CONTENT_TYPE"`
}

// DeadLetter receives jobs that were rejected without requeue. Leaving
// ExchangeName empty disables dead lettering and rejected jobs are dropped.
type DeadLetter struct {
	ExchangeName string `yaml:"exchange_name" env:"RABBITMQ_DLX_NAME"`
	QueueName    string `yaml:"queue_name" env:"RABBITMQ_DLQ_NAME"`
	RoutingKey   string `yaml:"routing_key" env:"RABBITMQ_DLQ_ROUTING_KEY"`

	// TTL in seconds dead-letters jobs nobody picked up in time. 0 keeps them.
	TTL int `yaml:"ttl" env:"RABBITMQ_DLQ_TTL"`
}

// Enabled reports whether a broker host is configured.
func (c Config) Enabled() bool {
	return c.Connection.Host != ""
}

func (c *Config) applyDefaults() {
	if c.Connection.Port == 0 {
		c.Connection.Port = DefaultPort
	}
	if c.Channel.ExchangeName == "" {
		c.Channel.ExchangeName = DefaultExchangeName
	}
	if c.Channel.ExchangeType == "" {
		c.Channel.ExchangeType = DefaultExchangeType
	}
	if c.Channel.RoutingKey == "" {
		c.Channel.RoutingKey = DefaultRoutingKey
	}
	if c.Channel.QueueName == "" {
		c.Channel.QueueName = DefaultQueueName
	}
	if c.Channel.PrefetchCount == 0 {
		c.Channel.PrefetchCount = DefaultPrefetchCount
	}
	if c.Channel.ContentType == "" {
		c.Channel.ContentType = DefaultContentType
	}
	if c.DeadLetter.ExchangeName != "" {
		if c.DeadLetter.QueueName == "" {
			c.DeadLetter.QueueName = c.Channel.QueueName + ".dlq"
		}
		if c.DeadLetter.RoutingKey == "" {
			c.DeadLetter.RoutingKey = c.Channel.RoutingKey
		}
	}
}
