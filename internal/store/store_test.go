package store

import (
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]*DB {
	t.Helper()

	disk, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := Open("")
	require.NoError(t, err)

	return map[string]*DB{"bolt": disk, "memory": mem}
}

func TestTokenStore_RoundTrip(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			tokens := db.Tokens()

			_, ok := tokens.Get()
			assert.False(t, ok, "empty store should report no credentials")

			require.NoError(t, tokens.Set(domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
			creds, ok := tokens.Get()
			require.True(t, ok)
			assert.Equal(t, "a1", creds.AccessToken)
			assert.Equal(t, "r1", creds.RefreshToken)

			replaced, err := tokens.ReplaceAccessToken("r1", "a2")
			require.NoError(t, err)
			assert.True(t, replaced)
			creds, ok = tokens.Get()
			require.True(t, ok)
			assert.Equal(t, "a2", creds.AccessToken)
			assert.Equal(t, "r1", creds.RefreshToken, "refresh token is not rotated")

			require.NoError(t, tokens.Clear())
			_, ok = tokens.Get()
			assert.False(t, ok)
		})
	}
}

func TestTokenStore_ReplaceAccessTokenAfterClear(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			tokens := db.Tokens()
			require.NoError(t, tokens.Set(domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
			require.NoError(t, tokens.Clear())

			replaced, err := tokens.ReplaceAccessToken("r1", "a2")
			require.NoError(t, err)
			assert.False(t, replaced)
			_, ok := tokens.Get()
			assert.False(t, ok, "cleared credentials stay cleared")

			require.NoError(t, tokens.Set(domain.Credentials{AccessToken: "b1", RefreshToken: "r2"}))
			replaced, err = tokens.ReplaceAccessToken("r1", "a2")
			require.NoError(t, err)
			assert.False(t, replaced, "a newer login is not overwritten")
			creds, ok := tokens.Get()
			require.True(t, ok)
			assert.Equal(t, "b1", creds.AccessToken)
		})
	}
}

func TestTokenStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Tokens().Set(domain.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	creds, ok := db.Tokens().Get()
	require.True(t, ok)
	assert.Equal(t, domain.Credentials{AccessToken: "a", RefreshToken: "r"}, creds)
}

func TestBucket_DeletePrefix(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			kv := db.Session()
			for _, k := range []string{"details:movie:1", "details:tv:2", "profiles", "mylist:1"} {
				require.NoError(t, kv.Put(k, []byte(k)))
			}

			require.NoError(t, kv.DeletePrefix("details:"))

			for _, k := range []string{"details:movie:1", "details:tv:2"} {
				_, ok, err := kv.Get(k)
				require.NoError(t, err)
				assert.False(t, ok, "%s should be gone", k)
			}
			v, ok, err := kv.Get("profiles")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("profiles"), v)

			require.NoError(t, kv.Clear())
			_, ok, _ = kv.Get("mylist:1")
			assert.False(t, ok)
		})
	}
}

func TestBucket_IsolatedFromCredentials(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Tokens().Set(domain.Credentials{AccessToken: "a", RefreshToken: "r"}))
			require.NoError(t, db.Session().Clear())

			_, ok := db.Tokens().Get()
			assert.True(t, ok, "clearing the session must not log the user out")
		})
	}
}

func TestPreferences_CurrentProfile(t *testing.T) {
	for name, db := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			prefs := db.Preferences()

			_, ok := prefs.CurrentProfile()
			assert.False(t, ok)

			require.NoError(t, prefs.SetCurrentProfile(42))
			id, ok := prefs.CurrentProfile()
			require.True(t, ok)
			assert.Equal(t, int64(42), id)

			require.NoError(t, prefs.ClearCurrentProfile())
			_, ok = prefs.CurrentProfile()
			assert.False(t, ok)
		})
	}
}
