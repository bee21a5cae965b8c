// Package ratelimiter throttles the unauthenticated account routes
// (signup, login, logout and refresh) per client address.
package ratelimiter

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"path"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AccountLimits configures an AccountLimiter.
type AccountLimits struct {
	// Attempts is how many requests one address may make to one account
	// route within Window.
	Attempts int
	Window   time.Duration
	// IdleTTL is how long an address keeps its budget after its last attempt.
	IdleTTL time.Duration
	// SweepEvery is how often idle budgets are dropped.
	SweepEvery time.Duration
}

// attemptKey is one client address on one account route. Login failures do
// not eat into the signup budget.
type attemptKey struct {
	addr  string
	route string
}

type budget struct {
	bucket  *rate.Limiter
	lastTry time.Time
}

// AccountLimiter keeps a token bucket per address and account route.
type AccountLimiter struct {
	limits  AccountLimits
	every   rate.Limit
	mu      sync.Mutex
	budgets map[attemptKey]*budget
	stop    context.CancelFunc
	now     func() time.Time
}

func NewAccountLimiter(limits AccountLimits) *AccountLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	al := &AccountLimiter{
		limits:  limits,
		every:   rate.Every(limits.Window / time.Duration(limits.Attempts)),
		budgets: make(map[attemptKey]*budget),
		stop:    cancel,
		now:     time.Now,
	}

	go al.sweep(ctx)

	return al
}

// Close stops the sweeper.
func (al *AccountLimiter) Close() {
	al.stop()
}

func (al *AccountLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(al.limits.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			al.dropIdle()
		}
	}
}

func (al *AccountLimiter) dropIdle() {
	al.mu.Lock()
	defer al.mu.Unlock()

	cutoff := al.now().Add(-al.limits.IdleTTL)
	for key, b := range al.budgets {
		if b.lastTry.Before(cutoff) {
			delete(al.budgets, key)
		}
	}
}

// keyFor identifies the caller. RemoteAddr is expected to be rewritten from
// X-Forwarded-For by chi's RealIP middleware upstream.
func keyFor(r *http.Request) attemptKey {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return attemptKey{addr: addr, route: path.Base(r.URL.Path)}
}

// allow spends one attempt of key's budget.
func (al *AccountLimiter) allow(key attemptKey) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	b, ok := al.budgets[key]
	if !ok {
		b = &budget{bucket: rate.NewLimiter(al.every, al.limits.Attempts)}
		al.budgets[key] = b
	}

	b.lastTry = al.now()
	return b.bucket.AllowN(b.lastTry, 1)
}

// RetryAfter is the time until one more attempt is allowed.
func (al *AccountLimiter) RetryAfter() time.Duration {
	if al.every <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(al.every))
}

// Middleware rejects account requests over budget with a JSON 429.
func (al *AccountLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFor(r)
		if al.allow(key) {
			next.ServeHTTP(w, r)
			return
		}

		slog.WarnContext(r.Context(), "account attempts exceeded",
			"addr", key.addr,
			"route", key.route)

		retryIn := int(math.Ceil(al.RetryAfter().Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retryIn))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		err := json.NewEncoder(w).Encode(map[string]any{
			"error":    "Too many attempts. Try again later.",
			"retry_in": retryIn,
		})
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to encode error response", "error", err)
		}
	})
}
