package pgvector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Backend is a vectordb.Backend storing chunks in postgres with the pgvector
// extension. The connection is swapped atomically when RetryConnection
// reconnects after a failed health check.
type Backend struct {
	cfg             Config
	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeShutdownOnce sync.Once
}

var _ vectordb.Backend = (*Backend)(nil)

// NewBackend connects to postgres and prepares the schema, retrying with
// exponential backoff until cfg.StartupTimeout elapses.
func NewBackend(cfg Config) (*Backend, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{
		cfg:             cfg,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}

	ctx := context.Background()
	backoff := retry.WithMaxDuration(cfg.StartupTimeout, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := connectToPostgres(cfg)
		if err != nil {
			log.Printf("WARN: PostgresSQL not ready, retrying: %v", err)
			return retry.RetryableError(err)
		}
		if err := ensureSchema(ctx, conn, cfg.DatabaseName); err != nil {
			closeConn(conn)
			return retry.RetryableError(err)
		}
		b.client.Store(conn)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error in connecting to postgres after all retries: %w", err)
	}

	return b, nil
}

func connectToPostgres(cfg Config) (*gorm.DB, error) {
	database, err := gorm.Open(
		postgres.Open(cfg.dsn()),
		&gorm.Config{
			TranslateError: true,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgresSQL database: %w", err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgresSQL database instance: %w", err)
	}

	databaseInstance.SetMaxOpenConns(cfg.ConnectionDetails.MaxOpenConns)
	databaseInstance.SetMaxIdleConns(cfg.ConnectionDetails.MaxIdleConns)
	databaseInstance.SetConnMaxLifetime(cfg.ConnectionDetails.ConnMaxLifetime)

	log.Println("INFO: Successfully connected to PostgresSQL database")

	return database, nil
}

// ensureSchema creates the extension, the schema and both tables. Every
// statement is idempotent.
func ensureSchema(ctx context.Context, db *gorm.DB, schema string) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.collections (
			name      TEXT PRIMARY KEY,
			dimension INTEGER NOT NULL DEFAULT 0
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.chunks (
			id         BIGSERIAL PRIMARY KEY,
			collection TEXT NOT NULL REFERENCES %q.collections(name) ON DELETE CASCADE,
			chunk_id   TEXT NOT NULL,
			text       TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT '',
			file_name  TEXT NOT NULL DEFAULT '',
			page       INTEGER,
			embedding  vector NOT NULL
		)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS chunks_collection_idx ON %q.chunks (collection)`, schema),
	}

	for _, stmt := range stmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to prepare schema %q: %w", schema, err)
		}
	}
	return nil
}

// DB returns the current connection.
func (b *Backend) DB() *gorm.DB {
	return b.client.Load()
}

func (b *Backend) table(name string) string {
	return fmt.Sprintf("%q.%s", b.cfg.DatabaseName, name)
}

// Transaction runs fn inside a database transaction on the current connection.
func (b *Backend) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.DB().WithContext(ctx).Transaction(fn)
}

// MonitorConnection pings the database every interval and signals
// RetryConnection when the ping fails. It returns on shutdown or when ctx is done.
func (b *Backend) MonitorConnection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.shutdownSignal:
			log.Println("INFO: Stopping MonitorConnection loop due to shutdown signal")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.healthCheck(); err != nil {
				select {
				case b.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

// RetryConnection reconnects whenever MonitorConnection reports a failure.
func (b *Backend) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-b.shutdownSignal:
			log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
			return
		case <-ctx.Done():
			return
		case <-b.retryChanSignal:
		innerLoop:
			for {
				select {
				case <-b.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connectToPostgres(b.cfg)
					if err != nil {
						log.Printf("ERROR: PostgresSQL reconnection failed: %v", err)
						time.Sleep(time.Second)
						continue innerLoop
					}
					old := b.client.Swap(newConn)
					closeConn(old)
					log.Println("INFO: Successfully reconnected to PostgresSQL database")
					continue outerLoop
				}
			}
		}
	}
}

func (b *Backend) healthCheck() error {
	dbConn := b.DB()
	if dbConn == nil {
		return fmt.Errorf("database client is not initialized")
	}

	db, err := dbConn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}
	return nil
}

// Close stops the monitoring loops and closes the connection pool.
func (b *Backend) Close() error {
	b.closeShutdownOnce.Do(func() {
		close(b.shutdownSignal)
	})

	sqlDB, err := b.DB().DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

func closeConn(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
