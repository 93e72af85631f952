package api

import (
	"net/http"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/gin-gonic/gin"
)

// Server exposes the index over HTTP.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	index    Index
	importer Importer
	recorder RequestRecorder
	jobs     JobQueue
	log      logger.Logger
}

// NewServer builds the router. importer and recorder may be nil; without an
// importer the import route answers 501.
func NewServer(cfg Config, index Index, importer Importer, recorder RequestRecorder, log logger.Logger) *Server {
	cfg.applyDefaults()
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		index:    index,
		importer: importer,
		recorder: recorder,
		log:      log,
	}
	s.engine.MaxMultipartMemory = cfg.MaxUploadBytes
	s.engine.Use(gin.Recovery(), s.observeRequests())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/collections", s.listCollections)
		v1.GET("/collections/:name/items", s.listItems)
		v1.DELETE("/collections/:name", s.deleteCollection)
		v1.POST("/collections/:name/upload", s.upload)
		v1.POST("/collections/:name/import", s.importPrefix)
		v1.POST("/collections/:name/jobs", s.enqueueJob)
		v1.POST("/context", s.buildContext)
	}
}

// WithJobs enables the job route. Without a queue it answers 501.
func (s *Server) WithJobs(q JobQueue) *Server {
	s.jobs = q
	return s
}

// Handler returns the router, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HTTPServer returns an *http.Server bound to the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
