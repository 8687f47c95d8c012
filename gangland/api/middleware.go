package api

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

// AuthRequired verifies the bearer token and stores the session in locals.
func AuthRequired(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return SendUnauthorized(c, "Authentication required")
		}
		sess, err := sessions.Verify(token)
		if err != nil {
			slog.Debug("Rejected session",
				slog.String("type", "api"),
				slog.String("ip", clientIP(c)),
				slog.String("error", err.Error()))
			return SendUnauthorized(c, "Invalid or expired session")
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

func sessionFrom(c *fiber.Ctx) (*Session, bool) {
	sess, ok := c.Locals(sessionLocal).(*Session)
	return sess, ok
}

// Logging logs one line per request, at warn for 4xx and error for 5xx.
func Logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler write the response before we read the status.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("took", time.Since(start)),
			slog.String("ip", clientIP(c)),
		}
		if sess, ok := sessionFrom(c); ok {
			attrs = append(attrs, slog.String("player", sess.PlayerID))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		slog.LogAttrs(c.UserContext(), level, "HTTP request processed", attrs...)
		return nil
	}
}

// RateLimiter is a sliding window limiter keyed by client.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	window   time.Duration
	limit    int
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := prune(rl.requests[key], now.Add(-rl.window))
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// Cleanup drops keys with no request inside the window.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, reqs := range rl.requests {
		if valid := prune(reqs, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func (rl *RateLimiter) run(done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-done:
			return
		}
	}
}

func prune(reqs []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(reqs) && !reqs[i].After(cutoff) {
		i++
	}
	return reqs[i:]
}

// RateLimit limits requests per key. keyFn picks the client identity, the
// player for authenticated routes and the IP otherwise.
func RateLimit(limiter *RateLimiter, keyFn func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)
		if !limiter.Allow(key) {
			slog.Warn("Rate limit exceeded",
				slog.String("type", "api"),
				slog.String("key", key),
				slog.String("path", c.Path()),
				slog.Int("limit", limiter.limit))
			c.Set(fiber.HeaderRetryAfter, "60")
			return SendError(c, fiber.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.", nil)
		}
		return c.Next()
	}
}

func byIP(c *fiber.Ctx) string {
	return "ip:" + clientIP(c)
}

func byPlayer(c *fiber.Ctx) string {
	if sess, ok := sessionFrom(c); ok {
		return "player:" + sess.PlayerID
	}
	return byIP(c)
}
