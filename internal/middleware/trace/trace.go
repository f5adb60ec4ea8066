package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	applog "fatura/internal/log"
)

// ContextKey type for context keys
type ContextKey string

// RequestIDKey is the context key for request ID
const RequestIDKey ContextKey = "request_id"

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// Middleware assigns request ids and logs each request once it completes.
type Middleware struct {
	logger    *applog.Logger
	extractIP func(*http.Request) string

	total      int64
	failures   int64
	totalMicro int64
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	ServerErrors        int64
	AverageResponseTime time.Duration
}

// NewMiddleware creates a new trace middleware. extractIP may be nil.
func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	return &Middleware{
		logger:    logger.WithComponent(applog.ComponentHTTP),
		extractIP: extractIP,
	}
}

// Middleware stores the request id and a request-scoped logger in the context.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		reqLogger := m.logger.With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = applog.WithLogger(ctx, reqLogger)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		atomic.AddInt64(&m.total, 1)
		atomic.AddInt64(&m.totalMicro, duration.Microseconds())

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
			atomic.AddInt64(&m.failures, 1)
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}

		fields := applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
			WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400)
		fields[applog.FieldClientIP] = clientIP
		fields[applog.FieldDurationHuman] = duration.String()

		reqLogger.Slog().Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// validRequestID accepts caller-supplied ids that are short and printable.
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		if c < '!' || c > '~' {
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.total)
	metrics := Metrics{
		TotalRequests: total,
		ServerErrors:  atomic.LoadInt64(&m.failures),
	}
	if total > 0 {
		metrics.AverageResponseTime = time.Duration(atomic.LoadInt64(&m.totalMicro)/total) * time.Microsecond
	}
	return metrics
}
