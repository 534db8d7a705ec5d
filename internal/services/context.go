package services

import "context"

type contextKey string

const (
	batchIDKey   contextKey = "batch_id"
	jobIndexKey  contextKey = "job_index"
	operationKey contextKey = "operation"
	requestIDKey contextKey = "request_id"
)

// WithBatchID annotates context with the batch run identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch run identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(batchIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithJobIndex annotates context with the submission index of the job.
func WithJobIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, jobIndexKey, index)
}

// JobIndexFromContext extracts the job submission index if present.
func JobIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(jobIndexKey).(int); ok {
		return v, true
	}
	return 0, false
}

// WithOperation annotates context with the operation kind name.
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation kind name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(operationKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a per-job correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
