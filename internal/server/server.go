// Package server exposes the relay, the static client and the market data
// endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dyike/FinAgentGo/internal/metrics"
	"github.com/dyike/FinAgentGo/internal/relay"
	"github.com/dyike/FinAgentGo/internal/storage"
	"github.com/dyike/FinAgentGo/pkg/app"
)

// EngineSource yields the engine new requests should use.
type EngineSource interface {
	Engine() *app.Engine
}

type Server struct {
	engines   EngineSource
	store     *storage.Store
	metrics   *metrics.Metrics
	registry  *relay.Registry
	staticDir string

	upgrader websocket.Upgrader
	router   *gin.Engine
	http     *http.Server
}

type Option func(*Server)

func WithStore(s *storage.Store) Option {
	return func(srv *Server) { srv.store = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(srv *Server) { srv.metrics = m }
}

func WithStaticDir(dir string) Option {
	return func(srv *Server) { srv.staticDir = dir }
}

func New(engines EngineSource, opts ...Option) *Server {
	s := &Server{
		engines:  engines,
		registry: relay.NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Registry() *relay.Registry {
	return s.registry
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.countRequests())

	r.GET("/", s.serveIndex)
	r.GET("/app.js", s.serveAppJS)
	r.GET("/vite.svg", s.serveIcon)
	if s.staticDir != "" {
		r.Static("/static", s.staticDir)
	}

	r.GET("/ws/:user_id", s.serveWS)
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/movers", s.movers)
		api.GET("/commodities", s.commodities)
		api.GET("/indices", s.indices)
		api.GET("/stocks", s.stocks)
		api.GET("/sectors", s.sectors)
		api.GET("/yields", s.yields)
		api.GET("/sessions", s.listSessions)
		api.GET("/sessions/:id", s.getSession)
		api.GET("/live", s.liveSessions)
	}
	return r
}

// ListenAndServe blocks until ctx is cancelled, then drains live sessions and
// shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown cancels every live relay session, then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if n := s.registry.CloseAll(); n > 0 {
		slog.Info("closing live sessions", "count", n)
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
