// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

// Package logging configures the process-wide structured logger and lets
// request-scoped attributes ride along on the context, so a feedback UID or
// room SID attached once shows up on every record logged downstream.
package logging

import (
	"context"
	"log"
	"log/slog"
	"os"
)

type ctxKey string

// ErrKey is the attribute key used for error values across the service.
const ErrKey = "error"

const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Recognized LOG_LEVEL values.
	debug = "debug"
	warn  = "warn"
	err   = "error"
	info  = "info"

	// Attribute value marking errors that need human attention.
	// TODO: alert on records carrying this attribute once log-based alerting
	// is wired up.
	priorityCritical = "critical"
)

// contextHandler decorates an slog.Handler with the attributes accumulated on
// the context via AppendCtx.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context whose attribute list includes the given attrs.
// Every record logged with the returned context carries them.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		v = append(v, attrs...)
		return context.WithValue(parent, slogFields, v)
	}

	v := make([]slog.Attr, 0, len(attrs))
	v = append(v, attrs...)
	return context.WithValue(parent, slogFields, v)
}

// InitStructureLogConfig installs the JSON handler as the slog default.
// LOG_LEVEL and LOG_ADD_SOURCE control verbosity and source annotation.
func InitStructureLogConfig() slog.Handler {
	logOptions := &slog.HandlerOptions{}
	var h slog.Handler

	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case debug:
		logOptions.Level = slog.LevelDebug
	case warn:
		logOptions.Level = slog.LevelWarn
	case err:
		logOptions.Level = slog.LevelError
	case info:
		logOptions.Level = slog.LevelInfo
	default:
		logOptions.Level = logLevelDefault
	}

	addSource := os.Getenv("LOG_ADD_SOURCE")
	logOptions.AddSource = addSource == "true" || addSource == "t" || addSource == "1"

	h = slog.NewJSONHandler(os.Stdout, logOptions)
	log.SetFlags(log.Llongfile)
	logger := contextHandler{h}
	slog.SetDefault(slog.New(logger))

	slog.Info("log config",
		"logLevel", logOptions.Level,
		"addSource", logOptions.AddSource,
	)

	return h
}

// Priority tags a record with an escalation level.
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical tags a record as needing escalation, used wherever a
// failure means the service cannot do its job.
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}
