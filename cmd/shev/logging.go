package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/shvbsle/shev/internal/log"
)

// getLogPath determines the log file path to use.
// Priority: customPath (from config) > XDG default path
// If customPath is invalid, falls back to XDG path.
func getLogPath(customPath string) (string, error) {
	if customPath != "" {
		if strings.HasPrefix(customPath, "~/") {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				customPath = filepath.Join(homeDir, customPath[2:])
			}
		}

		if err := os.MkdirAll(filepath.Dir(customPath), 0o755); err == nil {
			// Test if we can write to this location
			testFile, err := os.OpenFile(customPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
			if err == nil {
				_ = testFile.Close()
				return customPath, nil
			}
		}

		fmt.Fprintf(os.Stderr, "Warning: could not use custom log path %s, falling back to XDG default\n", customPath)
	}

	logPath, err := xdg.StateFile("shev/shev.log")
	if err != nil {
		return "", fmt.Errorf("could not get log path: %w", err)
	}
	return logPath, nil
}

// setupLogging points the default logger at the log file. The terminal
// backends own stdout, so nothing is ever logged there.
func setupLogging(level slog.Level, customLogPath string) (*os.File, error) {
	logPath, err := getLogPath(customLogPath)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	log.SetDefault(log.NewLogger(&log.LoggerConfiguration{LogLevel: level, Writer: f}))
	log.G().Info("shev logging initialized", "log_path", logPath, "log_level", level.String())
	return f, nil
}
