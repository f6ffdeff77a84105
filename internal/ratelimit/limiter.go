// Package ratelimit throttles contact form submissions per sender and per client IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration. Zero limits disable that layer.
type Config struct {
	Cooldown        time.Duration // Minimum time between submissions from one sender
	MaxPerHour      int           // Max submissions per sender per hour
	MaxPerIPPerHour int           // Max submissions per client IP per hour

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Cooldown:        60 * time.Second,
		MaxPerHour:      5,
		MaxPerIPPerHour: 20,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time // Most recent request (for cooldown)
}

// Limiter tracks submissions in memory, keyed by hashed sender and IP.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	byID   map[string]*entry
	byIP   map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byID:          make(map[string]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Check reports whether a submission from identifier at ip is allowed.
// It does not record the attempt; use Allow to check and record together.
func (l *Limiter) Check(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := hashKey("id:", normalizeIdentifier(identifier))
	ipKey := hashKey("ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.evaluate(idKey, ipKey, now)
}

// Allow checks the limits and, when the submission is allowed, records it
// under the same lock. Concurrent callers cannot both take the last slot.
func (l *Limiter) Allow(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := hashKey("id:", normalizeIdentifier(identifier))
	ipKey := hashKey("ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	result := l.evaluate(idKey, ipKey, now)
	if result.Allowed {
		bump(l.byID, idKey, now)
		bump(l.byIP, ipKey, now)
	}
	return result
}

// evaluate applies the limits. Callers hold l.mu.
func (l *Limiter) evaluate(idKey, ipKey string, now time.Time) LimitResult {
	if e := l.byID[idKey]; e != nil {
		if elapsed := now.Sub(e.lastAt); l.config.Cooldown > 0 && elapsed < l.config.Cooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.Cooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if l.config.MaxPerHour > 0 && now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.byIP[ipKey]; e != nil {
		if l.config.MaxPerIPPerHour > 0 && now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxPerIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// Record counts an accepted submission against both the sender and the IP.
func (l *Limiter) Record(identifier, ip string) {
	now := l.clock.Now()
	idKey := hashKey("id:", normalizeIdentifier(identifier))
	ipKey := hashKey("ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	bump(l.byID, idKey, now)
	bump(l.byIP, ipKey, now)
}

// bump starts a fresh window once the previous one is an hour old.
func bump(m map[string]*entry, key string, now time.Time) {
	e := m[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		m[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range []map[string]*entry{l.byID, l.byIP} {
		for k, e := range m {
			if now.Sub(e.lastAt) > time.Hour {
				delete(m, k)
			}
		}
	}
}

// size returns the number of tracked keys.
func (l *Limiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID) + len(l.byIP)
}

// GetClientIP extracts the client IP from a request.
// With trustProxy, the rightmost public address in X-Forwarded-For wins, then
// X-Real-IP. Without it both headers are ignored and RemoteAddr is used.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if net.ParseIP(r.RemoteAddr) != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			if candidate := r.RemoteAddr[:idx]; net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private or reserved range, including
// IPv4-mapped IPv6 forms.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an email address for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = normalizeIdentifier(identifier)
	local, domain, ok := strings.Cut(identifier, "@")
	if !ok {
		if len(identifier) >= 4 {
			return "***" + identifier[len(identifier)-4:]
		}
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// LogRateLimitExceeded logs a rate limit event with a sanitized identifier.
func LogRateLimitExceeded(ctx context.Context, identifier, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Contact rate limit exceeded")
}
