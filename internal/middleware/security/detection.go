package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	applog "fatura/internal/log"
)

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		".git", ".ssh", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "union select",
	}
	scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}
	traceMethods  = []string{"TRACE", "TRACK", "DEBUG"}
)

const maxURLLength = 2048

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	BlockedRequests    int64
}

// Detector flags probing requests and resolves the client address behind
// trusted proxies.
type Detector struct {
	suspicious     int64
	blocked        int64
	trustedProxies []*net.IPNet
}

// NewDetector trusts loopback and private ranges plus any extra CIDRs.
func NewDetector(extraTrusted ...string) (*Detector, error) {
	d := &Detector{}
	defaults := []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	for _, cidr := range append(defaults, extraTrusted...) {
		if err := d.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// DetectSuspiciousRequest reports whether r looks like a scan or an injection probe.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if d.suspiciousRequest(r) {
		atomic.AddInt64(&d.suspicious, 1)
		return true
	}
	return false
}

func (d *Detector) suspiciousRequest(r *http.Request) bool {
	if containsAny(strings.ToLower(r.URL.Path), suspiciousPatterns) ||
		containsAny(strings.ToLower(r.URL.RawQuery), suspiciousPatterns) {
		return true
	}
	if containsAny(strings.ToLower(r.Header.Get("User-Agent")), scannerAgents) {
		return true
	}
	for _, m := range traceMethods {
		if r.Method == m {
			return true
		}
	}
	return len(r.URL.String()) > maxURLLength
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ExtractClientIP returns the forwarded client address when the direct peer is
// a trusted proxy, and the peer address otherwise.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware logs suspicious requests and rejects the ones that probe for
// files outside the application with 404.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !d.DetectSuspiciousRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity)
		logger.WarnContext(r.Context(), "Suspicious request",
			applog.FieldClientIP, d.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if containsAny(strings.ToLower(r.URL.Path), suspiciousPatterns) {
			atomic.AddInt64(&d.blocked, 1)
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.suspicious),
		BlockedRequests:    atomic.LoadInt64(&d.blocked),
	}
}
