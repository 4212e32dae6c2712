package main

import (
	"log/slog"
	"os"
)

// logger is configured in rootCmd's PersistentPreRun, once cobra has parsed
// the global --verbose/--quiet flags, so its level reflects the flags the
// user actually passed rather than their zero values.
var logger *slog.Logger

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	execute()
}

func refreshLoggerLevel() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
