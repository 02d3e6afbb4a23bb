package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/imgajeed76/gridcore/internal/config"
)

// logger is handed to every table. It discards until setupLogging runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var logFile *os.File

// setupLogging builds the command logger. --verbose forces debug level;
// --log-file overrides the configured file. Without a file, records go to
// stderr.
func setupLogging(cfg config.LogConfig, verbose bool, file string) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	if file == "" {
		file = cfg.File
	}

	var w io.Writer = os.Stderr
	if file != "" {
		closeLogging()
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		w = f
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

func closeLogging() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: log.level %q", config.ErrInvalidValue, s)
}
