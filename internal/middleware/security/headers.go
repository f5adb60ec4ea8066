package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig lists the response headers applied to every page and API reply.
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// NoStorePrefixes marks dynamic paths whose responses must never be cached.
	NoStorePrefixes []string
}

// DefaultHeadersConfig allows htmx from unpkg and nothing else off-site.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",

		NoStorePrefixes: []string{"/api/", "/invoices", "/export"},
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
	hsts   string
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	h := &HeadersMiddleware{config: config}
	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.apply(w.Header(), r)
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) apply(headers http.Header, r *http.Request) {
	set := func(name, value string) {
		if value != "" {
			headers.Set(name, value)
		}
	}

	set("X-Content-Type-Options", h.config.XContentTypeOptions)
	set("X-Frame-Options", h.config.XFrameOptions)
	set("Content-Security-Policy", h.config.CSP)
	set("Referrer-Policy", h.config.ReferrerPolicy)
	set("Permissions-Policy", h.config.PermissionsPolicy)
	set("Cross-Origin-Opener-Policy", h.config.CrossOriginOpener)
	set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)

	// HSTS is meaningless over plain HTTP
	if r.TLS != nil {
		set("Strict-Transport-Security", h.hsts)
	}

	for _, prefix := range h.config.NoStorePrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			headers.Set("Cache-Control", "no-store")
			break
		}
	}
}

// StaticAssetMiddleware adds caching headers for static assets
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
