package ratelimit

import (
    "sync"
    "time"

    svcmetrics "SalesCast/internal/service/metrics"
    xhttp "SalesCast/pkg/http"

    "github.com/labstack/echo/v4"
)

type bucket struct {
    tokens float64
    last   time.Time
}

// Limiter is a token bucket per key (client IP for the forecast API).
// A bucket idle long enough to be full again is indistinguishable from a new
// one, so such buckets are swept on access.
type Limiter struct {
    mu         sync.Mutex
    m          map[string]*bucket
    capacity   float64
    refillRate float64       // tokens per second
    idleTTL    time.Duration // zero when buckets never refill
    nextSweep  time.Time
    now        func() time.Time
}

func New(capacity, refillPerSec float64) *Limiter {
    l := &Limiter{
        m:          make(map[string]*bucket),
        capacity:   capacity,
        refillRate: refillPerSec,
        now:        time.Now,
    }
    if refillPerSec > 0 {
        l.idleTTL = time.Duration(capacity / refillPerSec * float64(time.Second))
        if l.idleTTL < time.Second {
            l.idleTTL = time.Second
        }
    }
    return l
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.m)
}

func (l *Limiter) sweep(now time.Time) {
    if l.idleTTL == 0 || now.Before(l.nextSweep) {
        return
    }
    for k, b := range l.m {
        if now.Sub(b.last) >= l.idleTTL {
            delete(l.m, k)
        }
    }
    l.nextSweep = now.Add(l.idleTTL)
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    l.mu.Lock()
    defer l.mu.Unlock()

    now := l.now()
    l.sweep(now)
    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: l.capacity, last: now}
        l.m[key] = b
    }
    if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
        b.tokens += elapsed * l.refillRate
        if b.tokens > l.capacity {
            b.tokens = l.capacity
        }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens--
        return true
    }
    return false
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !l.Allow(c.RealIP()) {
                svcmetrics.RateLimited.Inc()
                return xhttp.AppErrorResponse(c,
                    xhttp.TooManyRequestsError("ERR_RATE_LIMITED", "too many forecast requests"))
            }
            return next(c)
        }
    }
}
