package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache stores rendered audit payloads keyed by input digest.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key derives a stable cache key from the request kind, the policy and the raw input.
func Key(kind, policy string, input []byte) string {
	sum := sha256.New()
	sum.Write([]byte(policy))
	sum.Write([]byte{0})
	sum.Write(input)
	return "orgaudit:" + kind + ":" + hex.EncodeToString(sum.Sum(nil))
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is the in-process fallback used when no Redis address is configured.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]entry
	now     func() time.Time
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Memory{ttl: ttl, max: maxEntries, entries: map[string]entry{}, now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.ttl > 0 && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.max {
		m.evictLocked()
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = entry{value: stored, expires: m.now().Add(m.ttl)}
	return nil
}

// evictLocked drops expired entries, or the one closest to expiry when none are.
func (m *Memory) evictLocked() {
	now := m.now()
	oldestKey := ""
	var oldest time.Time
	for key, e := range m.entries {
		if m.ttl > 0 && now.After(e.expires) {
			delete(m.entries, key)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = key, e.expires
		}
	}
	if len(m.entries) >= m.max && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
