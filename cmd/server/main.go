package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfoutline/internal/api"
	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/dgallion1/pdfoutline/internal/stats"
	"github.com/dgallion1/pdfoutline/internal/upload"
	"github.com/dgallion1/pdfoutline/internal/version"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	conv, err := convert.New(cfg.ConvertConfig())
	if err != nil {
		log.Error("invalid conversion settings", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		log.Error("create storage dir", "dir", cfg.StorageDir, "error", err)
		os.Exit(1)
	}
	if n, err := upload.PurgeWorkspaces(cfg.StorageDir); err != nil {
		log.Warn("purge stale workspaces", "dir", cfg.StorageDir, "error", err)
	} else if n > 0 {
		log.Info("purged stale workspaces", "count", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, conv, stats.New(time.Hour), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ConvertTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Error("listen", "port", cfg.Port, "error", err)
		os.Exit(1)
	}
	ln = netutil.LimitListener(ln, cfg.MaxConnections)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting pdfoutline",
			"port", cfg.Port,
			"version", version.Version,
			"workers", cfg.WorkerCount,
			"max_connections", cfg.MaxConnections,
		)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		err := httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
