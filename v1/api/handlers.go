package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
	"github.com/gin-gonic/gin"
)

type contextRequest struct {
	Query      string `json:"query" binding:"required"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
}

type contextResponse struct {
	Collection string         `json:"collection"`
	Context    string         `json:"context"`
	Matches    int            `json:"matches"`
	Hits       []vectordb.Hit `json:"hits"`
}

type importRequest struct {
	Prefix string `json:"prefix" binding:"required"`
}

type jobRequest struct {
	Prefix string `json:"prefix"`
	Dir    string `json:"dir"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCollections(c *gin.Context) {
	set, err := s.index.ListCollections(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"collections": names})
}

func (s *Server) listItems(c *gin.Context) {
	name := c.Param("name")
	items, err := s.index.ListCollectionItems(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": name, "count": len(items), "items": items})
}

func (s *Server) deleteCollection(c *gin.Context) {
	name := c.Param("name")
	if err := s.index.DeleteCollection(c.Request.Context(), name); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

// upload stores the multipart "files" in a temporary directory, ingests it
// into the collection and removes the directory on every path.
func (s *Server) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": `no files in form field "files"`})
		return
	}

	dir, err := os.MkdirTemp("", "ragcore-upload-*")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.RemoveAll(dir)

	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "." || name == ".." || name == string(filepath.Separator) {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("invalid file name %q", fh.Filename)})
			return
		}
		if seen[name] {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("duplicate file name %q", name)})
			return
		}
		seen[name] = true
		if err := c.SaveUploadedFile(fh, filepath.Join(dir, name)); err != nil {
			s.fail(c, fmt.Errorf("save %s: %w", name, err))
			return
		}
	}

	s.respondIngest(c, s.index.IngestDirectory(c.Request.Context(), dir, c.Param("name")))
}

func (s *Server) importPrefix(c *gin.Context) {
	if s.importer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "object storage is not configured"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	dir, err := os.MkdirTemp("", "ragcore-import-*")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.RemoveAll(dir)

	paths, err := s.importer.FetchPrefix(c.Request.Context(), req.Prefix, dir)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		return
	}
	if len(paths) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("no .pdf or .txt objects under %q", req.Prefix)})
		return
	}

	s.respondIngest(c, s.index.IngestDirectory(c.Request.Context(), dir, c.Param("name")))
}

// enqueueJob hands a prefix, or a directory below the worker's allowed root,
// to the workers and answers 202 with the job as sent.
func (s *Server) enqueueJob(c *gin.Context) {
	if s.jobs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "job queue is not configured"})
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	job, err := s.jobs.Enqueue(c.Request.Context(), worker.Job{
		Collection: c.Param("name"),
		Prefix:     req.Prefix,
		Dir:        req.Dir,
	})
	switch {
	case errors.Is(err, worker.ErrInvalidJob):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusAccepted, job)
	}
}

func (s *Server) respondIngest(c *gin.Context, result *rag.UploadResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
		_ = c.Error(errors.New(strings.Join(result.Errors, "; ")))
	}
	c.JSON(status, result)
}

func (s *Server) buildContext(c *gin.Context) {
	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "query must not be blank"})
		return
	}

	ret, err := s.index.Retrieve(c.Request.Context(), req.Query, req.Collection, req.TopK)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, contextResponse{
		Collection: ret.Collection,
		Context:    rag.FormatContext(ret.Hits),
		Matches:    len(ret.Hits),
		Hits:       ret.Hits,
	})
}

// fail maps err to a status: 404 for a missing collection, 500 otherwise.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, vectordb.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}
