// Package cache stores answers to questions that were already asked.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache holds string values for a fixed time to live.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Key normalizes a question so trivially different spellings share an entry.
func Key(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process Cache used when no Redis URL is configured.
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]entry
	lastSweep time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	m.entries[key] = entry{value: value, expires: now.Add(m.ttl)}
	return nil
}

// sweep drops expired entries, at most once per TTL.
func (m *Memory) sweep(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for key, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, key)
		}
	}
}
