// Command fakearango serves the in-memory ArangoDB emulator over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/goarango/internal/fakearango"
	"github.com/raysh454/goarango/internal/logging"
)

func main() {
	cfg := fakearango.DefaultConfig()
	logCfg := logging.DefaultConfig()

	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address")
	flag.StringVar(&cfg.Username, "user", "", "basic auth user (auth is off unless user and password are set)")
	flag.StringVar(&cfg.Password, "password", "", "basic auth password")
	flag.StringVar(&cfg.Version, "version", cfg.Version, "version reported by /_api/version")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "default cursor batch size")
	flag.DurationVar(&cfg.CursorTTL, "cursor-ttl", cfg.CursorTTL, "default cursor ttl")
	flag.StringVar(&logCfg.Level, "log-level", logCfg.Level, "debug, info, warn or error")
	flag.StringVar(&logCfg.Format, "log-format", logCfg.Format, "stdout, json or none")
	flag.Parse()

	logger, err := logging.New(logCfg, "fakearango")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Logger = logger

	srv := fakearango.NewServer(cfg).HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", logging.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}
