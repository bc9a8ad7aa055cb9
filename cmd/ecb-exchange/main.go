package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/ecb-exchange/internal/config"
	"github.com/ahmethakanbesel/ecb-exchange/internal/ecb"
	"github.com/ahmethakanbesel/ecb-exchange/internal/mcp"
	"github.com/ahmethakanbesel/ecb-exchange/internal/metrics"
	"github.com/ahmethakanbesel/ecb-exchange/internal/platform/sqlite"
	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
	raterepo "github.com/ahmethakanbesel/ecb-exchange/internal/repository/rate"
	"github.com/ahmethakanbesel/ecb-exchange/internal/server"
)

const (
	serverName    = "ecb-exchange"
	serverVersion = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries protocol frames; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Root context: cancelled on SIGINT/SIGTERM or when the stdio peer hangs up.
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	source := ecb.New(
		ecb.WithClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		ecb.WithEndpoint(cfg.Endpoint),
	)
	rateSvc := rate.NewService(repo, source,
		rate.WithMetrics(m),
		rate.WithSourceName(sourceName(cfg.Endpoint)),
	)

	if err := rateSvc.HealthCheck(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RefreshInterval > 0 {
		refresher := rate.NewRefresher(rateSvc, cfg.RefreshInterval)
		g.Go(func() error {
			refresher.Run(gctx)
			return nil
		})

		// SIGHUP forces an immediate refresh.
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-hup:
					refresher.Notify()
				}
			}
		})
	}

	if cfg.HTTPAddr != "" {
		srv := server.New(gctx, cfg.HTTPAddr, rateSvc, m, reg)
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if cfg.Stdio {
		tools := mcp.NewServer(serverName, serverVersion)
		tools.Register(mcp.NewRateConversion(rateSvc))
		g.Go(func() error {
			defer cancel()
			slog.Info("serving tools on stdio", "storage", cfg.Storage)
			return tools.Serve(gctx, os.Stdin, os.Stdout)
		})
	}

	if !cfg.Stdio && cfg.HTTPAddr == "" && cfg.RefreshInterval <= 0 {
		slog.Warn("nothing to serve: stdio, HTTP and refresher are all disabled")
		return nil
	}

	err = g.Wait()
	slog.Info("stopped")
	return err
}

// openRepository selects the persistence backend named by the configuration.
func openRepository(cfg config.Config) (rate.Repository, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return raterepo.NewMemoryRepository(), func() {}, nil
	default:
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		slog.Info("opened database", "path", cfg.DBPath)
		return raterepo.NewRepository(db.DB), func() { _ = db.Close() }, nil
	}
}

func sourceName(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "ecb"
	}
	return u.Host
}
