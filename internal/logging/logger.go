package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls how New builds the logger.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text or json
	LogFile string // optional path, appended to
}

// New initializes a logger that writes to w and, when LogFile is set, also to
// that file. The caller owns the returned file and must close it.
func New(w io.Writer, opts Options) (*slog.Logger, *os.File) {
	logWriter := w
	var logFile *os.File

	level, err := ParseLevel(opts.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	if opts.LogFile != "" {
		logFile, err = os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			slog.Error("Failed to open log file, continuing without it", "error", err, "path", opts.LogFile)
			logFile = nil
		} else {
			logWriter = io.MultiWriter(w, logFile)
		}
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(logWriter, handlerOpts)
	} else {
		handler = slog.NewTextHandler(logWriter, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, logFile
}

// ParseLevel maps a level name to a slog.Level.
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
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Discard returns a logger that drops everything. Used by tests and library
// callers that pass a nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
