package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with a component name added to every record
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Component string
	Output    io.Writer
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
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

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: config.Level}
		if strings.EqualFold(config.Format, "json") {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}
	return &Logger{
		Logger:    slog.New(handler),
		component: component,
	}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a new logger with a specific component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger,
		component: component,
	}
}

// Slog returns a plain slog.Logger carrying the component attribute, for
// packages that accept *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger.With(FieldComponent, l.component)
}

// Info logs at Info level with component context
func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{FieldComponent, l.component}, args...)...)
}

// InfoContext logs at Info level with context and component
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

// Warn logs at Warn level with component context
func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, append([]any{FieldComponent, l.component}, args...)...)
}

// WarnContext logs at Warn level with context and component
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

// Error logs at Error level with component context
func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, append([]any{FieldComponent, l.component}, args...)...)
}

// ErrorContext logs at Error level with context and component
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

// Debug logs at Debug level with component context
func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, append([]any{FieldComponent, l.component}, args...)...)
}

// DebugContext logs at Debug level with context and component
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Logger.DebugContext(ctx, msg, append([]any{FieldComponent, l.component}, args...)...)
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}
