package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

// newLogger builds a slog.Logger backed by zerolog. Every record carries
// the run ID of this invocation.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zl zerolog.Logger
	if formatStr == "json" {
		zl = zerolog.New(w)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp})
	}
	zl = zl.With().Timestamp().Logger()

	handler := zeroslog.NewHandler(zl, &zeroslog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("run_id", uuid.NewString()))
}
