// Package server exposes the query engine and saved-query repository over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satishbabariya/querydeck/internal/core/savedquery"
	"github.com/satishbabariya/querydeck/internal/debug"
)

// Options configures the router.
type Options struct {
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64
	Burst     int

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(runner QueryRunner, repo *savedquery.Repository, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := r.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(NewRateLimiter(opts.RateLimit, opts.Burst).Middleware())
	}

	queries := NewQueryHandler(runner)
	api.POST("/query", queries.Run)
	api.POST("/query/compile", queries.Compile)
	api.GET("/tables/:table/columns", queries.Columns)

	saved := NewSavedHandler(repo, runner)
	api.GET("/saved", saved.List)
	api.POST("/saved", saved.Save)
	api.POST("/saved/import", saved.Import)
	api.GET("/saved/export", saved.Export)
	api.POST("/saved/sort", saved.Sort)
	api.GET("/saved/:id", saved.Get)
	api.DELETE("/saved/:id", saved.Delete)
	api.POST("/saved/:id/duplicate", saved.Duplicate)
	api.POST("/saved/:id/run", saved.Run)

	return r
}

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	http *http.Server
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		debug.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
