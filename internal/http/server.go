package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fatura/internal/core"
	applog "fatura/internal/log"
	"fatura/internal/middleware/ratelimit"
	"fatura/internal/middleware/security"
	"fatura/internal/middleware/trace"
	"fatura/internal/services"
	appweb "fatura/web"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	CurrencyLabel      string
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *applog.Logger
	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Server is the HTTP front end of the invoice ledger.
type Server struct {
	http.Server
	templates *template.Template
	svc       *services.InvoiceService
	currency  string
	logger    *applog.Logger
	ready     func(ctx context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates.
func NewServer(addr string, svc *services.InvoiceService, opts Options) (*Server, error) {
	if opts.CurrencyLabel == "" {
		opts.CurrencyLabel = "TL"
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		svc:      svc,
		currency: opts.CurrencyLabel,
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		ready:    opts.Ready,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
	}
	s.tracer = trace.NewMiddleware(opts.Logger, detector.ExtractClientIP)

	s.templates, err = template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.limiter.Stop()
		return nil, err
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// HTML page
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /invoices", s.handleCreateInvoice)
	mux.HandleFunc("POST /invoices/{id}/pay", s.handleMarkPaid)
	mux.HandleFunc("POST /invoices/{id}/overdue", s.handleMarkOverdue)
	mux.HandleFunc("POST /invoices/{id}/delete", s.handleDeleteInvoice)
	mux.HandleFunc("GET /export.xlsx", s.handleExportXLSX)

	// JSON API
	mux.HandleFunc("GET /api/invoices", s.handleAPIList)
	mux.HandleFunc("POST /api/invoices", s.handleAPICreate)
	mux.HandleFunc("GET /api/invoices/{id}", s.handleAPIGet)
	mux.HandleFunc("POST /api/invoices/{id}/paid", s.handleAPIMarkPaid)
	mux.HandleFunc("POST /api/invoices/{id}/overdue", s.handleAPIMarkOverdue)
	mux.HandleFunc("DELETE /api/invoices/{id}", s.handleAPIDelete)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	return nil
}

// middleware wraps h outermost first: tracing, probe detection, security
// headers, then rate limiting of mutating requests.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited,
		http.MethodPost, http.MethodDelete)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	return applog.Middleware(s.logger)(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)

	w.Header().Set("Retry-After", "60")
	if isAPI(r) {
		writeJSONError(w, http.StatusTooManyRequests, apiError{Error: "rate limit exceeded"})
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Çok fazla istek. Lütfen biraz sonra tekrar deneyin.").Write(w)
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(m core.Money) string { return m.Format(s.currency) },
		"statusClass": func(st core.Status) string {
			return "status-" + st.English()
		},
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
