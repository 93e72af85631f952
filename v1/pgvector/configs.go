package pgvector

import (
	"fmt"
	"regexp"
	"time"
)

const (
	DefaultSchema = "default_vectorstore"

	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = time.Minute
	defaultStartupTimeout  = 30 * time.Second
	defaultInsertBatchSize = 200
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds the connection settings and the layout of the index.
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`

	// DatabaseName is the postgres schema holding the collections and chunks
	// tables, so several indexes can share one database.
	DatabaseName string `yaml:"database_name" env:"RAGCORE_DATABASE_NAME"`

	// StartupTimeout bounds connecting and preparing the schema, retries included.
	StartupTimeout time.Duration `yaml:"startup_timeout" env:"PGVECTOR_STARTUP_TIMEOUT"`
}

type Connection struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     string `yaml:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"db_name" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSLMODE"`
}

type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (c *Config) applyDefaults() {
	if c.DatabaseName == "" {
		c.DatabaseName = DefaultSchema
	}
	if c.Connection.Port == "" {
		c.Connection.Port = "5432"
	}
	if c.Connection.SSLMode == "" {
		c.Connection.SSLMode = "disable"
	}
	if c.ConnectionDetails.MaxOpenConns == 0 {
		c.ConnectionDetails.MaxOpenConns = defaultMaxOpenConns
	}
	if c.ConnectionDetails.MaxIdleConns == 0 {
		c.ConnectionDetails.MaxIdleConns = defaultMaxIdleConns
	}
	if c.ConnectionDetails.ConnMaxLifetime == 0 {
		c.ConnectionDetails.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = defaultStartupTimeout
	}
}

// Validate rejects configurations that cannot produce a usable connection.
// The schema name is interpolated into DDL, so it must be a plain identifier.
func (c *Config) Validate() error {
	if c.Connection.Host == "" {
		return fmt.Errorf("pgvector: connection host is required")
	}
	if !identifier.MatchString(c.DatabaseName) {
		return fmt.Errorf("pgvector: database name %q is not a valid schema identifier", c.DatabaseName)
	}
	return nil
}

func (c *Config) dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Connection.Host,
		c.Connection.Port,
		c.Connection.User,
		c.Connection.Password,
		c.Connection.DbName,
		c.Connection.SSLMode)
}
