// Package config holds small helpers for reading typed values from the
// process environment. Invalid values fall back to the supplied default and
// are reported with slog.Warn.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the variable or def when it is unset or empty.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt parses the variable as a base-10 integer.
func GetEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvBool accepts the forms understood by strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvDuration parses the variable with time.ParseDuration ("30s", "5m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, def)
		return def
	}
	return v
}

// GetEnvStringList splits a comma separated variable, dropping blank items.
func GetEnvStringList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func warnInvalid(key, raw string, def any) {
	slog.Warn("invalid environment value, using default",
		slog.String("key", key),
		slog.String("value", raw),
		slog.Any("default", def))
}
