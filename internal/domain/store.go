package domain

// TokenStore is the process-wide holder of credentials. Implementations make
// each call an atomic read or replace; the authenticated client is the only
// writer outside of login and logout.
type TokenStore interface {
	Get() (Credentials, bool)
	Set(creds Credentials) error
	// ReplaceAccessToken stores a new access token only while refreshToken
	// is still the stored refresh token. It reports false, writing nothing,
	// when the credentials were cleared or replaced in the meantime.
	ReplaceAccessToken(refreshToken, access string) (bool, error)
	Clear() error
}

// KV is a byte-oriented key/value namespace backing the session cache.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	DeletePrefix(prefix string) error
	Clear() error
}

// PreferenceStore persists small client-side settings such as the current
// profile.
type PreferenceStore interface {
	CurrentProfile() (int64, bool)
	SetCurrentProfile(id int64) error
	ClearCurrentProfile() error
}
