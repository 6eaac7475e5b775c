// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cvrgrid/waveform-transfer/sdk/config"
)

// New builds the run logger. Output always goes to stderr; when conf.File is
// set it is also written to a size-rotated file.
func New(conf config.LogConfig) *slog.Logger {
	var writer io.Writer = os.Stderr
	if conf.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   false,
		}
		writer = io.MultiWriter(os.Stderr, rotator)
	}
	return NewWithWriter(writer, conf)
}

func NewWithWriter(w io.Writer, conf config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(conf.Level)}
	var h slog.Handler
	if strings.EqualFold(conf.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard is used when a service is built without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
