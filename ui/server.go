package ui

import (
	"net/http"

	"triagelens/internal"
	"triagelens/internal/dataset"
	"triagelens/internal/session"
	"triagelens/ui/middleware"

	"github.com/gin-gonic/gin"
)

var logger = internal.DefaultLogger.With("Server")

// Options tunes request handling
type Options struct {
	MaxUploadBytes int64
	PageSize       int
}

// Server serves the triage dashboard API over one session
type Server struct {
	router  *gin.Engine
	state   *session.State
	loader  *dataset.Loader
	options Options
}

// NewServer creates a new web server instance with its routes registered
func NewServer(state *session.State, loader *dataset.Loader, options Options) *Server {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = 32 << 20
	}
	if options.PageSize <= 0 {
		options.PageSize = session.DefaultPageSize
	}

	router := gin.New()
	router.MaxMultipartMemory = options.MaxUploadBytes

	s := &Server{
		router:  router,
		state:   state,
		loader:  loader,
		options: options,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(internal.DefaultLogger.With("HTTP")))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	api.POST("/dataset", s.handleFileUpload)
	api.GET("/dataset", s.handleDatasetStatus)
	api.DELETE("/dataset", s.handleDatasetReset)

	api.GET("/filters", s.handleListFilters)
	api.POST("/filters", s.handleAddFilter)
	api.PATCH("/filters/:id", s.handleUpdateFilter)
	api.DELETE("/filters/:id", s.handleRemoveFilter)
	api.DELETE("/filters", s.handleClearFilters)

	data := api.Group("", middleware.RequireDataset(s.state))
	data.GET("/rows", s.handleRows)
	data.GET("/roles", s.handleRoles)
	data.GET("/chart", s.handleChart)
	data.GET("/funnel", s.handleFunnel)
	data.GET("/kpis", s.handleKPIs)
	data.GET("/columns/:name/summary", s.handleColumnSummary)
	data.GET("/report", s.handleReport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	logger.Info("starting triagelens on http://localhost%s", addr)
	return s.router.Run(addr)
}

// view returns the snapshot stored by RequireDataset, or a fresh one
func (s *Server) view(c *gin.Context) session.View {
	if v, ok := c.Get(middleware.ViewKey); ok {
		if view, ok := v.(session.View); ok {
			return view
		}
	}
	return s.state.View()
}
