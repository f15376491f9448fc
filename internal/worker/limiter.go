package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key is remembered
const DefaultIdleTTL = 10 * time.Minute

// Limiter is a keyed token-bucket rate limiter. Keys are arbitrary: the
// batch runner keys by analysis host, the server by client address.
// Keys idle for longer than the idle TTL are forgotten.
type Limiter struct {
	limiters     *gocache.Cache
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	// An evicted key starts with a full bucket, so never forget a key
	// before its bucket could have refilled on its own.
	idle := DefaultIdleTTL
	if limit != rate.Inf {
		refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second))
		if refill > idle {
			idle = refill
		}
	}

	return newLimiter(limit, burst, idle)
}

func newLimiter(limit rate.Limit, burst int, idle time.Duration) *Limiter {
	return &Limiter{
		limiters:     gocache.New(idle, idle/2),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a request for key is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow reports whether a request for key may happen now, consuming a token if so
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Len returns the number of remembered keys, including idle ones not yet purged
func (l *Limiter) Len() int {
	return l.limiters.ItemCount()
}

// get returns the limiter for key and restarts its idle timer
func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := l.limiters.Get(key); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	}
	l.limiters.Set(key, limiter, gocache.DefaultExpiration)

	return limiter
}

// HostKey returns the host of rawURL, for limiting per remote service
func HostKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
