package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCredentials = []byte("credentials")
	bucketSession     = []byte("session")
	bucketPrefs       = []byte("prefs")
)

var allBuckets = [][]byte{bucketCredentials, bucketSession, bucketPrefs}

const (
	keyAccessToken    = "accessToken"
	keyRefreshToken   = "refreshToken"
	keyCurrentProfile = "currentProfile"
)

// DB is the client's durable key/value storage, one BoltDB file with a bucket
// per concern. With an empty directory it runs memory-only.
type DB struct {
	db *bolt.DB

	mu  sync.RWMutex // Protects mem
	mem map[string]map[string][]byte
}

// Open opens (or creates) marquee.db under dir.
func Open(dir string) (*DB, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &DB{mem: make(map[string]map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "marquee.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Tokens returns the credential store backed by this DB.
func (s *DB) Tokens() *TokenStore { return &TokenStore{db: s} }

// Session returns the session cache namespace.
func (s *DB) Session() *Bucket { return &Bucket{db: s, name: bucketSession} }

// Preferences returns the client preference store.
func (s *DB) Preferences() *Preferences { return &Preferences{db: s} }

// === Generic helpers ===

func (s *DB) get(bucket []byte, keys ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))

	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for i, k := range keys {
			if v, ok := s.mem[string(bucket)][k]; ok {
				out[i] = bytes.Clone(v)
			}
		}
		return out, nil
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		for i, k := range keys {
			if v := b.Get([]byte(k)); v != nil {
				out[i] = bytes.Clone(v)
			}
		}
		return nil
	})
	return out, err
}

// put writes every pair in one transaction.
func (s *DB) put(bucket []byte, pairs map[string][]byte) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		m, ok := s.mem[string(bucket)]
		if !ok {
			m = make(map[string][]byte)
			s.mem[string(bucket)] = m
		}
		for k, v := range pairs {
			m[k] = bytes.Clone(v)
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for k, v := range pairs {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// putIf writes pairs only while key holds want. Both happen under one lock
// or transaction.
func (s *DB) putIf(bucket []byte, key string, want []byte, pairs map[string][]byte) (bool, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		m := s.mem[string(bucket)]
		if v, ok := m[key]; !ok || !bytes.Equal(v, want) {
			return false, nil
		}
		for k, v := range pairs {
			m[k] = bytes.Clone(v)
		}
		return true, nil
	}

	written := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v == nil || !bytes.Equal(v, want) {
			return nil
		}
		for k, v := range pairs {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		written = true
		return nil
	})
	return written, err
}

func (s *DB) delete(bucket []byte, keys ...string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, k := range keys {
			delete(s.mem[string(bucket)], k)
		}
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DB) deletePrefix(bucket []byte, prefix string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k := range s.mem[string(bucket)] {
			if strings.HasPrefix(k, prefix) {
				delete(s.mem[string(bucket)], k)
			}
		}
		return nil
	}

	// Collect first: deleting while iterating a cursor skips keys.
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var doomed [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && bytes.HasPrefix(k, prefixBytes); k, _ = c.Next() {
			doomed = append(doomed, bytes.Clone(k))
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DB) clearBucket(bucket []byte) error {
	return s.deletePrefix(bucket, "")
}

// === Credentials ===

// TokenStore implements domain.TokenStore on the credentials bucket.
type TokenStore struct {
	db *DB
}

var _ domain.TokenStore = (*TokenStore)(nil)

func (t *TokenStore) Get() (domain.Credentials, bool) {
	vals, err := t.db.get(bucketCredentials, keyAccessToken, keyRefreshToken)
	if err != nil || vals[0] == nil {
		return domain.Credentials{}, false
	}
	return domain.Credentials{
		AccessToken:  string(vals[0]),
		RefreshToken: string(vals[1]),
	}, true
}

func (t *TokenStore) Set(creds domain.Credentials) error {
	return t.db.put(bucketCredentials, map[string][]byte{
		keyAccessToken:  []byte(creds.AccessToken),
		keyRefreshToken: []byte(creds.RefreshToken),
	})
}

// ReplaceAccessToken checks the stored refresh token and writes the access
// token in one transaction, so a Clear that lands during a refresh is never
// undone.
func (t *TokenStore) ReplaceAccessToken(refreshToken, access string) (bool, error) {
	return t.db.putIf(bucketCredentials, keyRefreshToken, []byte(refreshToken),
		map[string][]byte{keyAccessToken: []byte(access)})
}

func (t *TokenStore) Clear() error {
	return t.db.delete(bucketCredentials, keyAccessToken, keyRefreshToken)
}

// === Session namespace ===

// Bucket implements domain.KV on a single bucket.
type Bucket struct {
	db   *DB
	name []byte
}

var _ domain.KV = (*Bucket)(nil)

func (b *Bucket) Get(key string) ([]byte, bool, error) {
	vals, err := b.db.get(b.name, key)
	if err != nil {
		return nil, false, err
	}
	return vals[0], vals[0] != nil, nil
}

func (b *Bucket) Put(key string, value []byte) error {
	return b.db.put(b.name, map[string][]byte{key: value})
}

func (b *Bucket) Delete(key string) error {
	return b.db.delete(b.name, key)
}

func (b *Bucket) DeletePrefix(prefix string) error {
	return b.db.deletePrefix(b.name, prefix)
}

func (b *Bucket) Clear() error {
	return b.db.clearBucket(b.name)
}

// === Preferences ===

// Preferences implements domain.PreferenceStore.
type Preferences struct {
	db *DB
}

var _ domain.PreferenceStore = (*Preferences)(nil)

func (p *Preferences) CurrentProfile() (int64, bool) {
	vals, err := p.db.get(bucketPrefs, keyCurrentProfile)
	if err != nil || vals[0] == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(string(vals[0]), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (p *Preferences) SetCurrentProfile(id int64) error {
	return p.db.put(bucketPrefs, map[string][]byte{
		keyCurrentProfile: []byte(strconv.FormatInt(id, 10)),
	})
}

func (p *Preferences) ClearCurrentProfile() error {
	return p.db.delete(bucketPrefs, keyCurrentProfile)
}
