package app

import (
	"log/slog"
	"os"
	"strings"
)

const logLevelEnv = "SKETCH_LOG_LEVEL"

// LogLevel reads SKETCH_LOG_LEVEL. Unset or unparsable values give info.
func LogLevel() slog.Level {
	var lvl slog.Level
	v := strings.TrimSpace(os.Getenv(logLevelEnv))
	if v == "" {
		return slog.LevelInfo
	}
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
