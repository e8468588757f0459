package hostmon

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a JSON slog logger writing to a rotated file. With console
// set the log is mirrored to stderr; the TUI owns the terminal otherwise.
func NewLogger(path, level string, console bool, sessionID string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     0,
		Compress:   false,
	}

	var writer io.Writer = rotator
	if console {
		writer = io.MultiWriter(os.Stderr, rotator)
	}

	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: lvl}))
	if sessionID != "" {
		logger = logger.With("session", sessionID)
	}
	return logger, rotator, nil
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
