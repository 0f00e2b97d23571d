package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"nodebbs/internal/config"
)

// Setup builds the process logger from the configured sinks and installs it
// as the slog default. quiet discards everything (used by CLI subcommands).
func Setup(configs []config.LoggerConfig, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var handlers []slog.Handler
	for _, cfg := range configs {
		if cfg.Stdout {
			handlers = append(handlers, newHandler(os.Stdout, cfg, !isatty.IsTerminal(os.Stdout.Fd())))
		}

		if cfg.File != "" {
			file, err := openLogFile(cfg.File)
			if err != nil {
				log.Printf("Failed to open log file %s: %v", cfg.File, err)
				continue
			}
			handlers = append(handlers, newHandler(file, cfg, true))
		}
	}

	var logger *slog.Logger
	switch len(handlers) {
	case 0:
		logger = slog.New(tint.NewHandler(os.Stdout, nil))
	case 1:
		logger = slog.New(handlers[0])
	default:
		logger = slog.New(NewFanout(handlers...))
	}

	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LoggerConfig, noColor bool) slog.Handler {
	timeFormat := time.TimeOnly
	if cfg.TimeFormat != "" {
		timeFormat = cfg.TimeFormat
	}

	hideTime := cfg.HideTime
	return tint.NewHandler(w, &tint.Options{
		NoColor:   noColor,
		Level:     parseLogLevel(cfg.Level),
		AddSource: cfg.Source,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if hideTime && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
		TimeFormat: timeFormat,
	})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
