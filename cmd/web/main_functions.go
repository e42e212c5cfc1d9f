package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-ttsweb/internal/config"
	"github.com/go-while/go-ttsweb/internal/web"
)

var Prof *prof.Profiler

// runWebServer starts the server and blocks until a shutdown signal or a
// server error. A failed bind is returned as an error and ends the process.
func runWebServer(webConfig *config.WebConfig) error {
	if err := webConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Printf("Starting go-ttsweb: Web Server (version: %s)", config.AppVersion)
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if _, err := os.Stat(webConfig.IndexTemplatePath()); err != nil {
		log.Printf("[WEB]: Warning: index template not readable, / will answer 500: %v", err)
	}

	if webConfig.PprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(webConfig.PprofAddr)
		log.Printf("[WEB]: Profiler listening on %s", webConfig.PprofAddr)
	}

	server := web.NewServer(webConfig)
	if err := server.Listen(); err != nil {
		return err
	}
	log.Printf("[WEB]: Starting go-ttsweb web server on %s://%s (debug: %t)", webConfig.Protocol(), server.Addr(), webConfig.Debug)

	// Set up cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		return fmt.Errorf("web server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), webConfig.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed")
	return nil
}
