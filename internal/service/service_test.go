package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var heat = domain.CatalogItem{ID: 949, Kind: domain.KindMovie, Title: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/heat.jpg"}

func TestDetails_CachedAfterFirstLoad(t *testing.T) {
	env := newTestEnv(t)
	repo := newFakeDetailsRepo()
	repo.add(heat)
	resolver := &fakeResolver{}
	svc := NewDetailsService(repo, resolver, env.cache, nil)

	first, err := svc.Details(context.Background(), domain.KindMovie, 949)
	require.NoError(t, err)
	assert.Equal(t, "Heat", first.Item.Title)
	require.NotNil(t, first.Media.Trailer)

	env.clock.Advance(24 * time.Hour)
	second, err := svc.Details(context.Background(), domain.KindMovie, 949)
	require.NoError(t, err)
	assert.Equal(t, first.Media.Trailer.Key, second.Media.Trailer.Key)

	assert.Equal(t, 1, repo.detailsCalls)
	assert.Equal(t, 1, resolver.calls)
}

func TestDetails_ErrorIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	repo := newFakeDetailsRepo()
	svc := NewDetailsService(repo, &fakeResolver{}, env.cache, nil)

	_, err := svc.Details(context.Background(), domain.KindMovie, 1)
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, 404))

	_, err = svc.Details(context.Background(), domain.KindMovie, 1)
	require.Error(t, err)
	assert.Equal(t, 2, repo.detailsCalls)
}

func TestRow_ResolvesAndExpires(t *testing.T) {
	env := newTestEnv(t)
	repo := newFakeDetailsRepo()
	repo.rows["movies-popular"] = []domain.CatalogItem{heat, {ID: 1, Kind: domain.KindMovie, Title: "Ronin"}}
	resolver := &fakeResolver{}
	svc := NewDetailsService(repo, resolver, env.cache, nil)
	row, err := domain.LookupRow("movies-popular")
	require.NoError(t, err)

	got, err := svc.Row(context.Background(), row)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ronin", got[1].Item.Title)
	assert.Equal(t, "tRonin", got[1].Media.Trailer.Key)

	_, err = svc.Row(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	env.clock.Advance(rowTTL + time.Second)
	_, err = svc.Row(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestSearch_ResolvesAndCachesPerPage(t *testing.T) {
	env := newTestEnv(t)
	repo := newFakeDetailsRepo()
	repo.hits = []domain.CatalogItem{heat, {ID: 2, Kind: domain.KindTV, Title: "Heat Wave"}}
	svc := NewDetailsService(repo, &fakeResolver{}, env.cache, nil)

	got, err := svc.Search(context.Background(), "heat", 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.KindTV, got[1].Item.Kind)
	assert.Equal(t, "tHeat Wave", got[1].Media.Trailer.Key)

	_, err = svc.Search(context.Background(), "  HEAT ", 1)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "heat", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"heat|1", "heat|2"}, repo.searches)

	_, err = svc.Search(context.Background(), "   ", 1)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestProfiles_CachedForTTL(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	svc := NewProfileService(account, env.db.Preferences(), env.cache, 0, nil)

	profiles, err := svc.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	env.clock.Advance(4 * time.Minute)
	_, err = svc.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, account.count("Profiles"))

	env.clock.Advance(2 * time.Minute)
	_, err = svc.Profiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, account.count("Profiles"))
}

func TestProfiles_MutationsInvalidate(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	svc := NewProfileService(account, env.db.Preferences(), env.cache, time.Hour, nil)
	ctx := context.Background()

	_, err := svc.Profiles(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, "Guest", "cat.png")
	require.NoError(t, err)
	profiles, err := svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 3)

	renamed, err := svc.Rename(ctx, created.ID, "Visitor")
	require.NoError(t, err)
	assert.Equal(t, "Visitor", renamed.Name)
	assert.Equal(t, "cat.png", renamed.Avatar)

	require.NoError(t, svc.Delete(ctx, created.ID))
	profiles, err = svc.Profiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
	assert.Equal(t, 4, account.count("Profiles"))
}

func TestProfiles_SwitchDropsProfileScopedEntries(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	prefs := env.db.Preferences()
	svc := NewProfileService(account, prefs, env.cache, 0, nil)
	ctx := context.Background()

	env.cache.Set(cache.DetailsKey(domain.KindMovie, 949), domain.Details{Item: heat}, 0)
	env.cache.Set(cache.RowKey("movies-popular"), []domain.Details{{Item: heat}}, time.Hour)

	p, err := svc.Switch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Kids", p.Name)

	id, ok := prefs.CurrentProfile()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	var d domain.Details
	assert.False(t, env.cache.Get(cache.DetailsKey(domain.KindMovie, 949), &d))
	assert.False(t, env.cache.Get(cache.RowKey("movies-popular"), &[]domain.Details{}))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, int64(2), current.ID)
}

func TestProfiles_SwitchUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProfileService(newFakeAccount(), env.db.Preferences(), env.cache, 0, nil)

	_, err := svc.Switch(context.Background(), 42)
	assert.True(t, errors.Is(err, domain.ErrProfileNotFound))
	_, ok := env.db.Preferences().CurrentProfile()
	assert.False(t, ok)
}

func TestProfiles_DeleteCurrentClearsSelection(t *testing.T) {
	env := newTestEnv(t)
	prefs := env.db.Preferences()
	svc := NewProfileService(newFakeAccount(), prefs, env.cache, 0, nil)
	ctx := context.Background()

	_, err := svc.Switch(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 2))

	_, ok := prefs.CurrentProfile()
	assert.False(t, ok)
	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestList_MutationsInvalidateListAndDetails(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	svc := NewListService(account, env.db.Preferences(), env.cache, time.Hour, nil)
	ctx := context.Background()

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	env.cache.Set(cache.DetailsKey(domain.KindMovie, 949), domain.Details{Item: heat}, 0)

	_, err = svc.Add(ctx, heat)
	require.NoError(t, err)
	assert.False(t, env.cache.Get(cache.DetailsKey(domain.KindMovie, 949), &domain.Details{}))

	in, err := svc.Contains(ctx, domain.KindMovie, 949)
	require.NoError(t, err)
	assert.True(t, in)
	assert.Equal(t, 2, account.count("MyList"))

	_, err = svc.Add(ctx, heat)
	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, 400))

	require.NoError(t, svc.Remove(ctx, domain.KindMovie, 949))
	in, err = svc.Contains(ctx, domain.KindMovie, 949)
	require.NoError(t, err)
	assert.False(t, in)
	assert.Equal(t, 3, account.count("MyList"))
}

func TestList_KeyedPerProfile(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	prefs := env.db.Preferences()
	svc := NewListService(account, prefs, env.cache, time.Hour, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, prefs.SetCurrentProfile(2))
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, account.count("MyList"))
}

func TestSession_LoginAndLogoutResetCache(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	prefs := env.db.Preferences()
	tokens := env.db.Tokens()
	svc := NewSessionService(account, tokens, prefs, env.cache, nil)
	account.onLogout = svc.SessionExpired
	ctx := context.Background()

	env.cache.Set(cache.KeyProfiles, []domain.Profile{{ID: 9}}, 0)
	require.NoError(t, prefs.SetCurrentProfile(9))

	require.Error(t, svc.Login(ctx, "alice", "wrong"))
	require.NoError(t, svc.Login(ctx, "alice", "secret"))
	assert.False(t, env.cache.Get(cache.KeyProfiles, &[]domain.Profile{}))
	_, ok := prefs.CurrentProfile()
	assert.False(t, ok)

	env.cache.Set(cache.KeyProfiles, []domain.Profile{{ID: 1}}, 0)
	require.NoError(t, svc.Logout())
	assert.False(t, env.cache.Get(cache.KeyProfiles, &[]domain.Profile{}))
	assert.Equal(t, 1, account.count("Logout"))
}

func TestSession_WhoAmI(t *testing.T) {
	env := newTestEnv(t)
	account := newFakeAccount()
	tokens := env.db.Tokens()
	svc := NewSessionService(account, tokens, env.db.Preferences(), env.cache, nil)

	_, err := svc.WhoAmI(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.Equal(t, 0, account.count("UserInfo"))
	assert.False(t, svc.Status().LoggedIn)

	require.NoError(t, tokens.Set(domain.Credentials{AccessToken: "opaque", RefreshToken: "r"}))
	info, err := svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)

	status := svc.Status()
	assert.True(t, status.LoggedIn)
	assert.True(t, status.AccessExpiry.IsZero(), "opaque tokens carry no expiry")
}

type fakeLauncher struct {
	urls []string
	err  error
}

func (f *fakeLauncher) Launch(url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func TestTrailer_Play(t *testing.T) {
	env := newTestEnv(t)
	repo := newFakeDetailsRepo()
	repo.add(heat)
	details := NewDetailsService(repo, &fakeResolver{}, env.cache, nil)
	launcher := &fakeLauncher{}
	svc := NewTrailerService(details, launcher, nil)

	trailer, err := svc.Play(context.Background(), domain.KindMovie, 949)
	require.NoError(t, err)
	assert.Equal(t, "tHeat", trailer.Key)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=tHeat"}, launcher.urls)

	launcher.err = errors.New("no display")
	_, err = svc.Play(context.Background(), domain.KindMovie, 949)
	require.Error(t, err)
}

func TestTrailer_NoneResolved(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set(cache.DetailsKey(domain.KindMovie, 949), domain.Details{Item: heat}, 0)
	details := NewDetailsService(newFakeDetailsRepo(), &fakeResolver{}, env.cache, nil)
	launcher := &fakeLauncher{}
	svc := NewTrailerService(details, launcher, nil)

	_, err := svc.Play(context.Background(), domain.KindMovie, 949)
	assert.ErrorIs(t, err, ErrNoTrailer)
	assert.Empty(t, launcher.urls)
}
