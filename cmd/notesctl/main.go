package main

import (
	"io"
	"log/slog"
	"os"

	"goggins/internal/client/gateway"
	"goggins/internal/client/tui"
	"goggins/internal/platform/config"
	"goggins/internal/platform/logger"
)

// main starts the terminal client against the API configured through the
// environment.
func main() {
	cfg := config.ClientFromEnv()
	log := logger.New()

	// Writing log lines to stdout would corrupt the alternate screen, so
	// the TUI gets a silent logger unless one is routed to a file.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path := os.Getenv("GOGGINS_CLIENT_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			quiet = slog.New(slog.NewTextHandler(f, nil))
		}
	}

	gw, err := gateway.New(cfg.BaseURL, gateway.WithLogger(quiet))
	if err != nil {
		log.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}

	if err := tui.Run(gw, quiet); err != nil {
		log.Error("client exited with error", "error", err)
		os.Exit(1)
	}
}
