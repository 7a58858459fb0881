// Package telemetry sets up logging and request metrics for the panel.
package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// NewLogger returns a text logger writing to w whose output never carries
// credentials.
func NewLogger(w io.Writer, level slog.Level) (*slog.Logger, *RedactHandler) {
	if w == nil {
		w = os.Stderr
	}
	h := NewRedactHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return slog.New(h), h
}

// OpenLogFile opens <dir>/<name>.log for appending.
func OpenLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
