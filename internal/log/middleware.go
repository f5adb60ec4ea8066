package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// StructuredLogger provides structured logging methods for ledger events
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogInvoiceCreated logs successful invoice creation
func (sl *StructuredLogger) LogInvoiceCreated(ctx context.Context, id int64, customer string, amountCents int64, dueDate, status string) {
	fields := NewFields().
		WithInvoice(id, customer, amountCents, dueDate, status).
		WithOperation(OpCreate).
		WithComponent(ComponentLedger)

	sl.logger.Logger.InfoContext(ctx, "Invoice created", fields.ToSlice()...)
}

// LogInvoiceChanged logs a status change or deletion
func (sl *StructuredLogger) LogInvoiceChanged(ctx context.Context, op string, id int64) {
	fields := NewFields().
		WithInvoiceID(id).
		WithOperation(op).
		WithComponent(ComponentLedger)

	sl.logger.Logger.InfoContext(ctx, "Invoice updated", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
