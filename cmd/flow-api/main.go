package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlowTagger/internal/config"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/query"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "YAML config file.")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Logger().WithError(err).Fatal("Failed to load configuration")
	}
	logging.SetupFromConfig(cfg.Logging.Level)
	log := logging.WithComponent("api")

	root := cfg.SnapshotRoot()
	apiHandler := &APIHandler{querier: query.NewSnapshotQuerier(root)}

	server := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           apiHandler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("API server starting on %s, serving snapshots from %s", server.Addr, root)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("Could not listen on %s", server.Addr)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	log.Info("API server exited.")
}
