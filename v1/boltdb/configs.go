package boltdb

import "time"

const (
	DefaultPath         = "./data"
	DefaultDatabaseName = "default_vectorstore"
	defaultOpenTimeout  = 5 * time.Second
)

// Config defines where the local index file lives.
type Config struct {
	// Path is the directory holding one file per database.
	Path string `yaml:"path" env:"BOLTDB_PATH"`

	// DatabaseName selects the file <Path>/<DatabaseName>.db.
	DatabaseName string `yaml:"database_name" env:"RAGCORE_DATABASE_NAME"`

	// OpenTimeout bounds the wait for the file lock held by another process.
	OpenTimeout time.Duration `yaml:"open_timeout" env:"BOLTDB_OPEN_TIMEOUT"`
}

func (c *Config) applyDefaults() {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.DatabaseName == "" {
		c.DatabaseName = DefaultDatabaseName
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
}
