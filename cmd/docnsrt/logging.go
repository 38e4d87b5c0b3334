// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// logLevelEnv overrides the config file level; --log-level overrides both.
const logLevelEnv = "DOCNSRT_LOG_LEVEL"

// effectiveLevel applies flag > env > config precedence.
func effectiveLevel(flagValue string, flagSet bool, configValue string) string {
	if flagSet && flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(logLevelEnv); env != "" {
		return env
	}
	return configValue
}

// parseLevel maps a level name to slog. Unknown names fall back to warn
// so the review UI stays readable.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newLogger builds the text logger and installs it as the default.
func newLogger(w io.Writer, level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

func absPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return filepath.Abs(p)
}
