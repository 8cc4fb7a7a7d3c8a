package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"idsexport/internal/app"
	"idsexport/internal/config"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "idsexport-api",
		ReportTimestamp: true,
	})

	cfg, err := config.Load(os.Getenv("IDSEXPORT_CONFIG"))
	if err != nil {
		logger.Fatal("config failed", "err", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}
	defer rt.Close()

	httpServer := app.NewHTTPServer(rt.Service, rt.Keys, cfg.CORSOrigin, logger)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Exports are synchronous and can take as long as the host allows.
		WriteTimeout: cfg.Server.Timeout + cfg.Lease.Wait + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr, "host", cfg.Server.URL, "keys", rt.Keys.Enabled())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
