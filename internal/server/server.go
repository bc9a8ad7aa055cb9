package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmethakanbesel/ecb-exchange/internal/metrics"
	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

type Server struct {
	srv *http.Server
}

// New creates a server. The baseCtx is used as the base context for all
// incoming requests (via BaseContext). A shared snapshot fetch already in
// flight runs to completion even when it is cancelled.
func New(baseCtx context.Context, addr string, rateSvc *rate.Service, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: newMux(rateSvc, m, gatherer),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
