package middleware

import (
	"net/http"
	"time"

	"triagelens/internal"
	"triagelens/internal/session"

	"github.com/gin-gonic/gin"
)

// RequireDataset rejects requests with 404 until a dataset has been loaded
func RequireDataset(state *session.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := state.View()
		if !view.Loaded() {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":  "no dataset loaded",
				"code":   "NOT_FOUND",
				"status": view.Status,
			})
			return
		}
		c.Set(ViewKey, view)
		c.Next()
	}
}

// ViewKey is the context key under which RequireDataset stores the
// session.View it checked, so handlers read the same snapshot.
const ViewKey = "session.view"

// RequestLogger logs each request at INFO, and at WARN when it failed
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			logger.Warn("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		logger.Info("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
