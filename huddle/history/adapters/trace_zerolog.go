// Package adapters provides infrastructure-backed implementations of the
// history engine's ports.
package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle/huddle/history"
)

type spanLoggerKey struct{}

// ZerologTracer implements the history.Tracer interface using zerolog.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a new zerolog tracer.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{logger: logger}
}

// StartSpan starts a new tracing span and returns the context and finish function.
func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	spanLogger := t.logger.With().Str("span", name).Logger()
	for k, v := range attrs {
		spanLogger = spanLogger.With().Interface(k, v).Logger()
	}

	ctx = context.WithValue(ctx, spanLoggerKey{}, spanLogger)

	startTime := time.Now()
	spanLogger.Debug().Str("event", "span_start").Time("start_time", startTime).Msg("starting span")

	finish := func(err error) {
		duration := time.Since(startTime)

		event := spanLogger.Debug()
		if err != nil {
			event = spanLogger.Error().Err(err)
		}

		event.
			Str("event", "span_end").
			Dur("duration", duration).
			Msg("ending span")
	}

	return ctx, finish
}

// Event logs a tracing event with the current span context.
func (t *ZerologTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	logger := t.logger
	if spanLogger, ok := ctx.Value(spanLoggerKey{}).(zerolog.Logger); ok {
		logger = spanLogger
	}

	event := logger.Debug()
	for k, v := range attrs {
		event = event.Interface(k, v)
	}
	event.Str("event", name).Msg("tracing event")
}

// Ensure ZerologTracer implements the Tracer interface.
var _ history.Tracer = (*ZerologTracer)(nil)
