package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// observeRequests logs each request and feeds the request recorder. Routes are
// labelled by their pattern, so collection names do not explode cardinality.
func (s *Server) observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if s.recorder != nil {
			s.recorder.IncrementRequests(route, strconv.Itoa(status/100)+"xx")
			s.recorder.RecordRequestDuration(start, route)
		}

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if status >= 500 {
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			s.log.Error("request failed", err, fields)
			return
		}
		s.log.Debug("request handled", nil, fields)
	}
}
