// Package observability provides production-grade observability features
// for remap pipelines: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// The expression core itself never logs; everything here is driven by the
// pipeline runner and the command line tools.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds pipeline context to a logger.
// Returns a new logger with program and batch_size fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "route-severity", 128)
//	enriched.Info("processing") // includes program, batch_size
func EnrichLogger(logger *slog.Logger, program string, batchSize int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("program", program),
		slog.Int("batch_size", batchSize),
	)
}

// LogCompile logs a successful program compilation.
func LogCompile(logger *slog.Logger, program string, variables int, warnings int) {
	if logger == nil {
		return
	}
	logger.Info("program compiled",
		slog.String("program", program),
		slog.Int("variables", variables),
		slog.Int("warnings", warnings),
	)
}

// LogBatchStart logs the start of a batch evaluation.
func LogBatchStart(logger *slog.Logger, program string, size int) {
	if logger == nil {
		return
	}
	logger.Debug("batch starting",
		slog.String("program", program),
		slog.Int("batch_size", size),
	)
}

// LogBatchComplete logs batch completion with its outcome split.
func LogBatchComplete(logger *slog.Logger, program string, size, dropped int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("batch completed",
		slog.String("program", program),
		slog.Int("batch_size", size),
		slog.Int("dropped", dropped),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEventDropped logs one event removed by a runtime fault.
func LogEventDropped(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event dropped",
		slog.String("event_id", eventID),
		slog.String("reason", err.Error()),
	)
}

// LogDropStoreError logs a drop store failure (non-fatal).
func LogDropStoreError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("drop store append failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
