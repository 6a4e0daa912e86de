package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/store"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv is an in-memory store with a session cache on a controllable clock
type testEnv struct {
	db    *store.DB
	cache *cache.Session
	clock *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return &testEnv{
		db:    db,
		cache: cache.New(db.Session(), nil, cache.WithClock(clock.Now)),
		clock: clock,
	}
}

type fakeDetailsRepo struct {
	mu           sync.Mutex
	items        map[string]domain.CatalogItem
	rows         map[string][]domain.CatalogItem
	hits         []domain.CatalogItem
	detailsCalls int
	listCalls    int
	searches     []string
}

func newFakeDetailsRepo() *fakeDetailsRepo {
	return &fakeDetailsRepo{
		items: make(map[string]domain.CatalogItem),
		rows:  make(map[string][]domain.CatalogItem),
	}
}

func (f *fakeDetailsRepo) add(item domain.CatalogItem) {
	f.items[item.CacheKey()] = item
}

func (f *fakeDetailsRepo) Details(ctx context.Context, kind domain.MediaKind, id int64) (*domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalls++
	item, ok := f.items[domain.CatalogItem{Kind: kind, ID: id}.CacheKey()]
	if !ok {
		return nil, &domain.HTTPError{Status: 404}
	}
	return &item, nil
}

func (f *fakeDetailsRepo) List(ctx context.Context, row domain.Row) ([]domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.rows[row.Name], nil
}

func (f *fakeDetailsRepo) SearchMulti(ctx context.Context, query string, page int) ([]domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, fmt.Sprintf("%s|%d", query, page))
	return f.hits, nil
}

type fakeResolver struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, item domain.CatalogItem) domain.ResolvedMedia {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return domain.ResolvedMedia{
		Trailer: &domain.VideoCandidate{Key: "t" + item.Title, Site: "YouTube", Type: "Trailer"},
		LogoURL: "https://img.example/original" + item.PosterPath,
	}
}

func (f *fakeResolver) ResolveAll(ctx context.Context, items []domain.CatalogItem) []domain.ResolvedMedia {
	out := make([]domain.ResolvedMedia, len(items))
	for i, item := range items {
		out[i] = f.Resolve(ctx, item)
	}
	return out
}

// fakeAccount is an in-memory account backend
type fakeAccount struct {
	mu       sync.Mutex
	profiles []domain.Profile
	list     []domain.ListEntry
	nextID   int64
	calls    map[string]int
	loggedIn bool
	onLogout func()
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{
		profiles: []domain.Profile{{ID: 1, Name: "Main"}, {ID: 2, Name: "Kids"}},
		nextID:   3,
		calls:    make(map[string]int),
	}
}

func (f *fakeAccount) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAccount) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAccount) Login(ctx context.Context, username, password string) error {
	f.hit("Login")
	if password != "secret" {
		return &domain.HTTPError{Status: 401}
	}
	f.loggedIn = true
	return nil
}

func (f *fakeAccount) Logout() error {
	f.hit("Logout")
	f.loggedIn = false
	if f.onLogout != nil {
		f.onLogout()
	}
	return nil
}

func (f *fakeAccount) Register(ctx context.Context, username, email, password string) error {
	f.hit("Register")
	return nil
}

func (f *fakeAccount) UserInfo(ctx context.Context) (*domain.UserInfo, error) {
	f.hit("UserInfo")
	return &domain.UserInfo{ID: 1, Username: "alice", Email: "alice@example.com"}, nil
}

func (f *fakeAccount) Profiles(ctx context.Context) ([]domain.Profile, error) {
	f.hit("Profiles")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Profile(nil), f.profiles...), nil
}

func (f *fakeAccount) CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	f.hit("CreateProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	f.profiles = append(f.profiles, p)
	return &p, nil
}

func (f *fakeAccount) UpdateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	f.hit("UpdateProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.profiles {
		if f.profiles[i].ID == p.ID {
			f.profiles[i] = p
			return &p, nil
		}
	}
	return nil, &domain.HTTPError{Status: 404}
}

func (f *fakeAccount) DeleteProfile(ctx context.Context, id int64) error {
	f.hit("DeleteProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			f.profiles = append(f.profiles[:i], f.profiles[i+1:]...)
			return nil
		}
	}
	return &domain.HTTPError{Status: 404}
}

func (f *fakeAccount) MyList(ctx context.Context) ([]domain.ListEntry, error) {
	f.hit("MyList")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ListEntry(nil), f.list...), nil
}

func (f *fakeAccount) AddToList(ctx context.Context, entry domain.ListEntry) (*domain.ListEntry, error) {
	f.hit("AddToList")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.list {
		if e.ItemID == entry.ItemID {
			return nil, &domain.HTTPError{Status: 400, Payload: []byte(`{"message":"Movie already in list"}`)}
		}
	}
	f.list = append(f.list, entry)
	return &entry, nil
}

func (f *fakeAccount) RemoveFromList(ctx context.Context, itemID int64) error {
	f.hit("RemoveFromList")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.list {
		if e.ItemID == itemID {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return &domain.HTTPError{Status: 404}
}
