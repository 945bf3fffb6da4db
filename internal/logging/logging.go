// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/config"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, internalerr.ErrInvalidConfig)
}

// New returns a logger writing to stderr.
func New(cfg config.LogConfig) (*slog.Logger, error) {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter returns a text or JSON logger writing to w.
func NewWriter(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("log format %q: %w", cfg.Format, internalerr.ErrInvalidConfig)
	}
	return slog.New(h), nil
}
