package middleware

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type IPRateLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	log      *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewIPRateLimiter allows perMinute requests per client ip. Idle visitors
// are dropped until ctx is cancelled.
func NewIPRateLimiter(ctx context.Context, perMinute, burst int, logger *zap.Logger) *IPRateLimiter {
	if burst <= 0 {
		burst = 5
	}
	l := &IPRateLimiter{
		rps:   rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
		log:   logger,
	}
	go l.cleanupVisitors(ctx)
	return l
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now().UnixNano()
	v, ok := l.visitors.Load(ip)
	if !ok {
		nv := &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		nv.lastSeen.Store(now)
		v, _ = l.visitors.LoadOrStore(ip, nv)
	}
	vi := v.(*visitor)
	vi.lastSeen.Store(now)
	return vi.limiter
}

func (l *IPRateLimiter) cleanupVisitors(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		l.evictIdle(time.Now().Add(-5 * time.Minute))
	}
}

// evictIdle drops visitors not seen since cutoff.
func (l *IPRateLimiter) evictIdle(cutoff time.Time) {
	l.visitors.Range(func(k, v interface{}) bool {
		if v.(*visitor).lastSeen.Load() < cutoff.UnixNano() {
			l.visitors.Delete(k)
		}
		return true
	})
}

func (l *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := getIP(c)
		if !l.getLimiter(ip).Allow() {
			l.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
			return utils.JSONError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

func getIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil {
		return host
	}
	return ip
}
