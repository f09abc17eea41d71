package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger. LOG_FORMAT selects the handler:
// "json" for structured production output, "text" for key=value lines
// with source locations, and the default "pretty" for development,
// which drops source locations and lowers the level to debug outside
// production.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(newLogHandler(cfg, os.Stdout))
}

func newLogHandler(cfg *Config, w io.Writer) slog.Handler {
	format := "pretty"
	if cfg != nil && cfg.LogFormat != "" {
		format = cfg.LogFormat
	}
	switch format {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true})
	default:
		opts := &slog.HandlerOptions{}
		if !cfg.IsProduction() {
			opts.Level = slog.LevelDebug
		}
		return slog.NewTextHandler(w, opts)
	}
}
