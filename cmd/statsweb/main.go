// Command statsweb serves the extracted stats over HTTP for a display.
// It performs one extraction at startup; POST /api/stats/refresh runs another.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"kovaakstats/internal/app"
	"kovaakstats/internal/config"
	"kovaakstats/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (default kovaakstats.yaml if present)")
	statsDir := flag.String("dir", "", "KovaaK's stats directory")
	port := flag.Int("port", 0, "HTTP port")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statsweb: %v\n", err)
		os.Exit(2)
	}
	if *statsDir != "" {
		cfg.Extraction.StatsDir = *statsDir
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logCfg := cfg.Logging
	logCfg.FilePath = cfg.LogFilePath()
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "statsweb: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg, logger, providers)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
