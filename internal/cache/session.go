// Package cache provides the session-scoped TTL cache that sits in front of
// backend and catalog calls.
package cache

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// entry is the stored envelope. A zero ExpiresAt never expires.
type entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Session is a TTL cache over a KV namespace. Expiry is lazy: stale entries
// are evicted when read. It never returns errors; storage failures are logged
// and behave as a miss.
type Session struct {
	kv     domain.KV
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a Session backed by kv.
func New(kv domain.KV, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{kv: kv, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get decodes the live value for key into dest and reports whether it was found.
func (s *Session) Get(key string, dest any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("session cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("dropping corrupt cache entry", "key", key, "error", err)
		s.Invalidate(key)
		return false
	}

	if !e.ExpiresAt.IsZero() && s.now().After(e.ExpiresAt) {
		s.logger.Debug("cache entry expired", "key", key)
		s.Invalidate(key)
		return false
	}

	if err := json.Unmarshal(e.Value, dest); err != nil {
		s.logger.Warn("cache entry does not match destination", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores value under key, overwriting any previous entry. ttl <= 0 keeps
// the entry until it is invalidated.
func (s *Session) Set(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("session cache encode failed", "key", key, "error", err)
		return
	}
	e := entry{Value: data}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("session cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.kv.Put(key, raw); err != nil {
		s.logger.Warn("session cache write failed", "key", key, "error", err)
	}
}

// Invalidate removes key.
func (s *Session) Invalidate(key string) {
	if err := s.kv.Delete(key); err != nil {
		s.logger.Warn("session cache delete failed", "key", key, "error", err)
	}
}

// InvalidatePrefix removes every key starting with prefix.
func (s *Session) InvalidatePrefix(prefix string) {
	if err := s.kv.DeletePrefix(prefix); err != nil {
		s.logger.Warn("session cache prefix delete failed", "prefix", prefix, "error", err)
	}
}

// Clear drops the whole session namespace.
func (s *Session) Clear() {
	if err := s.kv.Clear(); err != nil {
		s.logger.Warn("session cache clear failed", "error", err)
	}
}

// Lookup is the typed form of Get.
func Lookup[T any](s *Session, key string) (T, bool) {
	var v T
	if !s.Get(key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}
