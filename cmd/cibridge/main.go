package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/cibridge/cibridge-mcp/internal/config"
	"github.com/cibridge/cibridge-mcp/internal/health"
	"github.com/cibridge/cibridge-mcp/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	showVersion := pflag.Bool("version", false, "print version and exit")
	envFile := pflag.String("env-file", "", "path to a .env file to load before reading the environment")
	logLevel := pflag.String("log-level", "", "log level (overrides CIBRIDGE_LOG_LEVEL)")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("CIBridge MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		os.Exit(0)
	}

	// Log to stderr; stdout is reserved for the MCP protocol.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(parsed)
	}

	log.Info().Str("version", version).Msg("CIBridge MCP server starting")

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create MCP server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional health listener for process supervisors.
	if cfg.HealthAddr != "" {
		hs := health.NewServer(cfg.HealthAddr, server.Checks())
		go func() {
			log.Info().Str("addr", cfg.HealthAddr).Msg("health endpoint listening")
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("health endpoint failed")
			}
		}()
		defer func() { _ = hs.Close() }()
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info().Msg("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}

	log.Info().Msg("server stopped")
}
