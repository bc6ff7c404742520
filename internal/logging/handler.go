package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger builds a logger writing to w in the given format.
// Debug lowers the level from info to debug.
func NewLogger(w io.Writer, format string, debug bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: %s, %s)", format, FormatText, FormatJSON)
	}
}
