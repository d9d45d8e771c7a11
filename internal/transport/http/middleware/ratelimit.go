package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"orgaudit/internal/transport/http/api"
)

// WindowCounter counts hits per key in fixed windows. Incr returns the count
// after this hit and the time left in the key's window.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.keyFn = fn
		}
	}
}

// WithCounter shares counts through c, e.g. Redis when several replicas serve
// the same clients.
func WithCounter(c WindowCounter) RateLimitOption {
	return func(l *limiter) {
		if c != nil {
			l.counter = c
		}
	}
}

type limiter struct {
	name    string
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	counter WindowCounter
}

func newLimiter(name string, limit int, window time.Duration, keyFn RateLimitKeyFunc, opts ...RateLimitOption) *limiter {
	l := &limiter{name: name, limit: limit, window: window, keyFn: keyFn}
	for _, opt := range opts {
		opt(l)
	}
	if l.counter == nil {
		l.counter = NewMemoryCounter()
	}
	return l
}

func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter("api", limit, window, actorOrIPKey, opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter limits for token issuance (a quarter
// of baseLimit, per IP and per client id) and for audit runs, employee imports
// and PDF rendering (half of baseLimit, per client).
func SensitiveMutationRateLimit(baseLimit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	mutationLimit := max(baseLimit/2, 1)
	byScope := map[sensitiveScope][]*limiter{
		scopeToken: {
			newLimiter("token-ip", authLimit, window, clientIPKey, opts...),
			newLimiter("token-client", authLimit, window, CredentialOrIPKey("clientId"), opts...),
		},
		scopeMutation: {
			newLimiter("mutation", mutationLimit, window, actorOrIPKey, opts...),
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, l := range byScope[sensitiveRateScope(r)] {
				if !l.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow counts the request and writes the 429 itself when over the limit.
// Counter failures let the request through.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}

	count, resetIn, err := l.counter.Incr(r.Context(), "ratelimit:"+l.name+":"+key, l.window)
	if err != nil {
		slog.Warn("rate limit counter unavailable", "limiter", l.name, "err", err)
		return true
	}
	resetSec := ceilSeconds(resetIn)
	remaining := max(int64(l.limit)-count, 0)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if count <= int64(l.limit) {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded",
		"limiter", l.name,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// MemoryCounter is the single-process WindowCounter. Expired windows are
// dropped on a sweep at most once per minute.
type MemoryCounter struct {
	mu        sync.Mutex
	windows   map[string]*counterWindow
	lastSweep time.Time
	now       func() time.Time
}

type counterWindow struct {
	count int64
	reset time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: map[string]*counterWindow{}, now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= time.Minute {
		for k, cw := range m.windows {
			if !now.Before(cw.reset) {
				delete(m.windows, k)
			}
		}
		m.lastSweep = now
	}

	cw, ok := m.windows[key]
	if !ok || !now.Before(cw.reset) {
		cw = &counterWindow{reset: now.Add(window)}
		m.windows[key] = cw
	}
	cw.count++
	return cw.count, cw.reset.Sub(now), nil
}

func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// CredentialOrIPKey keys token requests by the client id in the JSON body so
// one caller cannot spread guesses for a single client across addresses.
func CredentialOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "clientId"
	}
	return func(r *http.Request) string {
		if id := jsonBodyField(r, field); id != "" {
			return "credential:" + strings.ToLower(id)
		}
		return clientIPKey(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if client, ok := GetClient(r.Context()); ok && client.ClientID != "" {
		return "client:" + client.TenantID + ":" + client.ClientID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

// jsonBodyField peeks at a string field of a JSON body and restores the body.
func jsonBodyField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	scopeToken
	scopeMutation
)

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return scopeNone
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case path == "/auth/token":
		return scopeToken
	case path == "/audits/report.pdf":
		return scopeMutation
	case strings.HasPrefix(path, "/tenants/") &&
		(strings.HasSuffix(path, "/audits") || strings.HasSuffix(path, "/employees")):
		return scopeMutation
	}
	return scopeNone
}
