package main

import (
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"smart-blog-api/internal/app"
	"smart-blog-api/internal/config"
	"smart-blog-api/internal/logger"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading the environment (missing file is ignored)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	logFormat := flags.String("log-format", "", "log format: pretty or json (overrides LOG_FORMAT)")
	_ = flags.Parse(os.Args[1:])

	slog.SetDefault(slog.New(logger.New(os.Stdout, slog.LevelInfo, "pretty")))

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = *logFormat
	}
	slog.SetDefault(slog.New(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)))

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
