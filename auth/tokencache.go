package auth

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// tokenCache remembers which session id a token decodes to, so
	// repeat requests skip the AEAD open. Only the decode result is
	// cached, the session row itself is resolved from the notebook on
	// every request, otherwise logout and expiry would lag behind.
	tokenCache struct {
		cache *bigcache.BigCache
	}
)

func newTokenCache(ttl time.Duration) (*tokenCache, error) {
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize token cache, cause %w", err)
	}
	return &tokenCache{
		cache: cache,
	}, nil
}

func (m *tokenCache) save(token string, sessionID uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sessionID)
	m.cache.Set(token, buf[:])
}

func (m *tokenCache) lookup(token string) (uint64, bool) {
	buf, err := m.cache.Get(token)
	if err != nil || len(buf) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(buf), true
}

func (m *tokenCache) forget(token string) {
	m.cache.Delete(token)
}
