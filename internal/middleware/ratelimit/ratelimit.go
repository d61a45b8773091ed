// Package ratelimit throttles state-changing requests per client.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const window = time.Minute

// Config tunes a Limiter. Zero fields take the DefaultConfig value.
type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often idle clients are forgotten.
	CleanupInterval time.Duration
	// IdleTTL is how long a client may stay silent before it is forgotten.
	IdleTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		IdleTTL:           10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = def.RequestsPerMinute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = def.IdleTTL
	}
	return c
}

// counter is one client's current window.
type counter struct {
	opened time.Time
	seen   time.Time
	hits   int
}

// Limiter counts requests per client in fixed one-minute windows that open
// on the client's first request.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	counters map[string]*counter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter returns a limiter with its sweeper running. Call Stop to end it.
func NewLimiter(cfg Config) *Limiter {
	l := newLimiter(cfg, time.Now)
	go l.sweepEvery(l.cfg.CleanupInterval)
	return l
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	return &Limiter{
		cfg:      cfg.withDefaults(),
		now:      now,
		counters: make(map[string]*counter),
		stop:     make(chan struct{}),
	}
}

// Allow records a request from key. When the request is over the limit it
// returns false and the time left until the window reopens.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.opened) >= window {
		l.counters[key] = &counter{opened: now, seen: now, hits: 1}
		return true, 0
	}
	c.hits++
	c.seen = now
	if c.hits <= l.cfg.RequestsPerMinute {
		return true, 0
	}
	return false, window - now.Sub(c.opened)
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep forgets clients idle for longer than IdleTTL and returns how many.
func (l *Limiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.IdleTTL)
	n := 0
	for key, c := range l.counters {
		if c.seen.Before(cutoff) {
			delete(l.counters, key)
			n++
		}
	}
	return n
}

// ActiveClients is the number of clients with a live counter.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware applies the limit to POST, PUT, PATCH and DELETE; reads are
// never throttled. Rejected requests get a Retry-After header and are passed
// to onLimit, or answered with a plain 429 when onLimit is nil.
func (l *Limiter) Middleware(clientKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutates(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ok, wait := l.Allow(clientKey(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
}

// retrySeconds rounds wait up to whole seconds, never below one.
func retrySeconds(wait time.Duration) int {
	s := int(math.Ceil(wait.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
