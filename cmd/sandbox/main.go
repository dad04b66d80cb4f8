package main

import (
	"fmt"
	"os"

	"github.com/tellerdesk-dev/tellerdesk/internal/config"
	"github.com/tellerdesk-dev/tellerdesk/internal/logger"
	"github.com/tellerdesk-dev/tellerdesk/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	// Create server
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sandbox server")
	}

	log.Info().Str("version", version).Msg("Starting TellerDesk sandbox bank...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Sandbox server failed to start")
	}
}
