package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/internal/server"
	applog "github.com/surepl/commit-census/pkg/log"
)

// loadConfig prefers the yaml config but falls back to the built-in
// defaults: serving a directory of casts should not require a config
// file to be present.
func loadConfig() *cfg.Config {
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil || config == nil {
		mock, _ := cfg.NewMockLoader()
		config, _ = mock.Load()
	}
	return config
}

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port to serve on")
	noFetch := flag.Bool("no-fetch", false, "Do not download player assets")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	config := loadConfig()
	logger, _ := applog.NewCslLogger()

	if *port == 0 {
		*port = config.Server.Port
	}

	srv, err := server.NewServer(logger, config, *port)
	if err != nil {
		stdlog.Fatalf("Failed to create server: %v", err)
	}

	if config.Server.FetchAssets && !*noFetch {
		srv.EnsureAssets(ctx, ".")
	}

	// Run server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}
	logger.Info(ctx, "Server shut down gracefully")
}
