package app

import (
	"io"
	"log/slog"
)

// newLogger builds the run logger from a validated Config. The global slog
// default is left untouched so parallel apps in tests stay isolated. Every
// record carries the run id.
func newLogger(cfg *Config, runID string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(outW, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(outW, opts)
	}
	return slog.New(handler).With("run_id", runID)
}
