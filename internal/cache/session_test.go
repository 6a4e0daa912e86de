package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestSession(t *testing.T) (*Session, domain.KV, *fakeClock) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	kv := db.Session()
	return New(kv, nil, WithClock(clock.Now)), kv, clock
}

func TestSession_SetGet(t *testing.T) {
	s, _, _ := newTestSession(t)

	profiles := []domain.Profile{{ID: 1, Name: "Kids"}, {ID: 2, Name: "Sam"}}
	s.Set(KeyProfiles, profiles, 5*time.Minute)

	got, ok := Lookup[[]domain.Profile](s, KeyProfiles)
	require.True(t, ok)
	assert.Equal(t, profiles, got)
}

func TestSession_ExpiredEntryIsEvicted(t *testing.T) {
	s, kv, clock := newTestSession(t)

	s.Set("k", "v", 100*time.Millisecond)
	clock.Advance(150 * time.Millisecond)

	var v string
	assert.False(t, s.Get("k", &v), "stale read must miss")

	_, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok, "stale entry must no longer occupy storage")
}

func TestSession_EntryLiveUntilDeadline(t *testing.T) {
	s, _, clock := newTestSession(t)

	s.Set("k", 7, 100*time.Millisecond)
	clock.Advance(100 * time.Millisecond)

	got, ok := Lookup[int](s, "k")
	require.True(t, ok, "now == expiresAt is still live")
	assert.Equal(t, 7, got)
}

func TestSession_ZeroTTLNeverExpires(t *testing.T) {
	s, _, clock := newTestSession(t)

	s.Set(DetailsKey(domain.KindMovie, 550), domain.Details{Item: domain.CatalogItem{ID: 550, Title: "Fight Club"}}, 0)
	clock.Advance(365 * 24 * time.Hour)

	got, ok := Lookup[domain.Details](s, DetailsKey(domain.KindMovie, 550))
	require.True(t, ok)
	assert.Equal(t, "Fight Club", got.Item.Title)
}

func TestSession_SetOverwrites(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.Set("k", "first", time.Minute)
	s.Set("k", "second", time.Minute)

	got, ok := Lookup[string](s, "k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestSession_InvalidatePrefix(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.Set(DetailsKey(domain.KindMovie, 1), "a", 0)
	s.Set(DetailsKey(domain.KindTV, 2), "b", 0)
	s.Set(KeyProfiles, "c", time.Minute)

	for _, p := range ProfileScopedPrefixes() {
		s.InvalidatePrefix(p)
	}

	_, ok := Lookup[string](s, DetailsKey(domain.KindMovie, 1))
	assert.False(t, ok)
	_, ok = Lookup[string](s, DetailsKey(domain.KindTV, 2))
	assert.False(t, ok)
	_, ok = Lookup[string](s, KeyProfiles)
	assert.True(t, ok)
}

type brokenKV struct{}

var errDisk = errors.New("quota exceeded")

func (brokenKV) Get(string) ([]byte, bool, error) { return nil, false, errDisk }
func (brokenKV) Put(string, []byte) error         { return errDisk }
func (brokenKV) Delete(string) error              { return errDisk }
func (brokenKV) DeletePrefix(string) error        { return errDisk }
func (brokenKV) Clear() error                     { return errDisk }

func TestSession_StorageErrorsAreMisses(t *testing.T) {
	s := New(brokenKV{}, nil)

	assert.NotPanics(t, func() {
		s.Set("k", "v", time.Minute)
		s.Invalidate("k")
		s.InvalidatePrefix("k")
		s.Clear()
	})

	_, ok := Lookup[string](s, "k")
	assert.False(t, ok)
}

func TestSession_CorruptEntryIsDropped(t *testing.T) {
	s, kv, _ := newTestSession(t)
	require.NoError(t, kv.Put("k", []byte("not json")))

	_, ok := Lookup[string](s, "k")
	assert.False(t, ok)

	_, present, err := kv.Get("k")
	require.NoError(t, err)
	assert.False(t, present)
}
