// Package main provides the entry point for the PageTurn server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/di"
	"github.com/pageturnapp/pageturn-server/internal/di/providers"
	"github.com/pageturnapp/pageturn-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown services in reverse order; the DI container handles
	// ordering for everything implementing do.Shutdownable.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The store and search index use wrapper types, close them explicitly.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		log.Info("Closing search index...")
		if err := searchHandle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}

	log.Info("Happy reading...")
}
