package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per client key.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientLimiter
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration
	idleTTL         time.Duration
	now             func() time.Time

	rejected int64
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	// Burst defaults to RequestsPerMinute.
	Burst           int
	CleanupInterval time.Duration
	IdleTTL         time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine. Call Stop to release it.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	rl := &Limiter{
		clients:         make(map[string]*clientLimiter),
		stopCleanup:     make(chan struct{}),
		limit:           rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		burst:           config.Burst,
		cleanupInterval: config.CleanupInterval,
		idleTTL:         config.IdleTTL,
		now:             time.Now,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether a request from key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	now := rl.now()
	if rl.client(key, now).AllowN(now, 1) {
		return true
	}
	atomic.AddInt64(&rl.rejected, 1)
	return false
}

func (rl *Limiter) client(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients idle for longer than the idle TTL and
// returns how many were removed.
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	removed := 0
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	Rejected    int64
	ClientCount int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		Rejected:    atomic.LoadInt64(&rl.rejected),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware limits requests per key. Only methods in guarded are limited;
// an empty list limits everything. onLimit may be nil.
func (rl *Limiter) Middleware(keyFunc func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request), guarded ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guards(guarded, r.Method) || rl.Allow(keyFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter().Seconds())))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}

func (rl *Limiter) retryAfter() time.Duration {
	d := time.Duration(float64(time.Second) / float64(rl.limit))
	if d < time.Second {
		return time.Second
	}
	return d
}

func guards(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
