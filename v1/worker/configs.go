package worker

import "time"

const (
	DefaultConcurrency = 1
	DefaultJobTimeout  = 30 * time.Minute
)

// Config controls how many jobs a worker runs at once and for how long.
type Config struct {
	// Concurrency is the number of jobs processed in parallel. Keep it at or
	// below the queue prefetch count.
	Concurrency int `yaml:"concurrency" env:"RAGCORE_WORKER_CONCURRENCY"`

	// JobTimeout bounds a single job, download and ingestion included.
	JobTimeout time.Duration `yaml:"job_timeout" env:"RAGCORE_WORKER_JOB_TIMEOUT"`

	// AllowedRoot is the only directory tree that dir jobs may read from.
	// Empty disables dir jobs; prefix jobs are unaffected.
	AllowedRoot string `yaml:"allowed_root" env:"RAGCORE_WORKER_ALLOWED_ROOT"`
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = DefaultJobTimeout
	}
}
