package webhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bracketbuddy/internal/catalog"
	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/render"
	"bracketbuddy/internal/session"
	"bracketbuddy/internal/store"
)

// RawSource returns an upstream payload untouched; prediction.Client implements it.
type RawSource interface {
	FetchRaw(ctx context.Context, sel prediction.Selection) ([]byte, error)
}

// ServerConfig lists the HTTP server's dependencies. Catalog and Renders may be nil.
type ServerConfig struct {
	Addr            string
	Sessions        *session.Manager
	Catalog         *catalog.Registry
	Renders         store.RenderRepository
	Upstream        RawSource
	ParseOptions    prediction.ParseOptions
	Style           render.Style
	SnapshotEnabled bool
	SnapshotTimeout time.Duration
}

// Server serves the viewer page, the chart API and the websocket stream.
type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("http server requires a session manager")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if err := registerPageRoutes(router); err != nil {
		return nil, err
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": cfg.Sessions.Len()})
	})
	NewRouter(cfg).Register(router)

	return &Server{addr: cfg.Addr, router: router}, nil
}

func requestLogger() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		log.Debugf("%s %s status=%d ip=%s dur=%s", method, fullPath, c.Writer.Status(), client, time.Since(start))
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Named("http").Infof("listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
