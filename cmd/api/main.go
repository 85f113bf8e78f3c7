// Package main provides the entry point for the Notivo server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/notivo/notivo-server/internal/di"
	"github.com/notivo/notivo-server/internal/di/providers"
	"github.com/notivo/notivo-server/internal/logger"
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

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The store and cache use wrapper handles, so close them explicitly
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing relational store...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close relational store", "error", err)
		} else {
			log.Info("Relational store closed successfully")
		}
	}

	if cacheHandle, err := do.Invoke[*providers.CacheHandle](injector); err == nil {
		log.Info("Closing query cache...")
		if err := cacheHandle.Shutdown(); err != nil {
			log.Error("Failed to close query cache", "error", err)
		} else {
			log.Info("Query cache closed successfully")
		}
	}

	log.Info("Goodbye")
}
