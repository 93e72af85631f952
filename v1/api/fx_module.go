package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/minio"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
	"go.uber.org/fx"
)

// ServerParams groups the dependencies of the HTTP server.
type ServerParams struct {
	fx.In

	Config   *Config `optional:"true"`
	Manager  *rag.Manager
	Minio    *minio.MinioClient `optional:"true"`
	Recorder RequestRecorder    `optional:"true"`
	Jobs     *worker.Enqueuer   `optional:"true"`
	Logger   logger.Logger
}

func NewServerFromParams(p ServerParams) *Server {
	var cfg Config
	if p.Config != nil {
		cfg = *p.Config
	}

	// A nil *MinioClient must not become a non-nil Importer.
	var importer Importer
	if p.Minio != nil {
		importer = p.Minio
	}
	s := NewServer(cfg, p.Manager, importer, p.Recorder, p.Logger)
	if p.Jobs != nil {
		s.WithJobs(p.Jobs)
	}
	return s
}

// FXModule provides the *Server and serves it for the application lifetime.
var FXModule = fx.Module("api",
	fx.Provide(NewServerFromParams),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle binds the listener on start, so a taken port fails
// startup, and drains in-flight requests on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, log logger.Logger) {
	srv := s.HTTPServer()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting HTTP server", nil, map[string]interface{}{"address": ln.Addr().String()})

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped unexpectedly", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down HTTP server", nil, nil)
			return srv.Shutdown(ctx)
		},
	})
}
