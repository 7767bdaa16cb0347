// Package server wires the HTTP API around the fetch, extract and relay
// pipeline. Routing, CORS and rate limiting live here; all branching logic
// stays in the pipeline packages.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"reelproxy/internal/config"
	"reelproxy/internal/fetch"
	"reelproxy/internal/relay"
)

// Server is the HTTP front end of the service.
type Server struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher
	relay   *relay.Relay
	log     zerolog.Logger
	engine  *gin.Engine
}

// New builds a Server from configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	opts, err := fetch.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		fetcher: fetch.New(opts, log),
		relay:   relay.New(cfg.Relay.AllowedHosts, log),
		log:     log,
	}
	s.engine = s.buildEngine()
	return s, nil
}

func (s *Server) buildEngine() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	e := gin.New()
	e.Use(RequestLogger(s.log), gin.Recovery())
	e.Use(cors.New(corsConfig(s.cfg.CORS)))
	if s.cfg.RateLimit.Enabled {
		e.Use(RateLimit(s.cfg.RateLimit.PerSecond, s.cfg.RateLimit.Burst))
	}

	api := e.Group("/api")
	api.GET("/getVideo", s.handleGetVideo)
	api.GET("/download", s.handleDownload)

	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.cfg.StaticDir != "" {
		e.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	return e
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func corsConfig(cc config.CORS) cors.Config {
	cfg := cors.DefaultConfig()
	if len(cc.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = cc.AllowedOrigins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	return cfg
}
