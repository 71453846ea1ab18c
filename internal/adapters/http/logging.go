package http

import (
	"context"
	"log/slog"
)

const serviceName = "tool-feedback-portal"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}

// operationFields carries the request id and, on admin routes, the caller.
func operationFields(ctx context.Context, operation, outcome string) []any {
	fields := []any{
		"operation", operation,
		"outcome", outcome,
		"request_id", requestIDFromContext(ctx),
	}
	if p := principalFromContext(ctx); p.Email != "" {
		fields = append(fields, "principal", p.NormalizedEmail())
	}
	return fields
}

func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	fields := append(operationFields(ctx, operation, "failure"),
		"status_code", statusCode,
		"error_code", code,
		"message", message,
	)
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	switch {
	case statusCode >= 500:
		httpLogger().ErrorContext(ctx, "http operation failed", fields...)
	case statusCode >= 400:
		httpLogger().WarnContext(ctx, "http operation failed", fields...)
	default:
		// Rejections answered with a redirect are expected user flow.
		httpLogger().InfoContext(ctx, "http operation rejected", fields...)
	}
}
