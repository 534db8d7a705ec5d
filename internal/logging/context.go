package logging

import (
	"context"
	"log/slog"

	"docforge/internal/services"
)

// WithContext returns a logger annotated with any batch, job, operation, and
// request identifiers carried by the context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if id, ok := services.BatchIDFromContext(ctx); ok {
		logger = logger.With(String(FieldBatchID, id))
	}
	if idx, ok := services.JobIndexFromContext(ctx); ok {
		logger = logger.With(Int(FieldJobIndex, idx))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		logger = logger.With(String(FieldOperation, op))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		logger = logger.With(String(FieldRequestID, id))
	}
	return logger
}
