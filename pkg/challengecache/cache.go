// Copyright 2025 Certen Protocol
//
// Failed-Challenge Cache (C6): a time-windowed negative cache of challenge
// ids. Backed by an embedded cometbft-db KV store rather than a bare Go
// map — same KV-plus-prefix-key idiom the reference implementation's
// ledger package uses over its own cometbft-db handle — so the cache
// survives for the life of the process's db handle without needing its
// own goroutine-safe map type reinvented here.
package challengecache

import (
	"encoding/binary"
	"sync"
	"time"

	dbm "github.com/cometbft/cometbft-db"
)

var keyPrefix = []byte("failedchallenge:")

func cacheKey(challengeID string) []byte {
	return append(append([]byte{}, keyPrefix...), []byte(challengeID)...)
}

// Cache is the Challenge worker's owned failed-challenge cache. It is not
// safe to share across worker instances: the spec assigns it to a single
// Challenge worker, and this type's own mutex only protects the embedded
// DB handle from the worker's own concurrent tick goroutine and any
// inspection (metrics, tests) running alongside it.
type Cache struct {
	mu sync.Mutex
	db dbm.DB
	now func() time.Time
}

// New builds a Cache over db (typically dbm.NewMemDB()).
func New(db dbm.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// RememberFailedChallenge marks challengeID as failed for ttl: last-write-wins.
func (c *Cache) RememberFailedChallenge(challengeID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expireAt := c.now().Add(ttl).Unix()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(expireAt))
	return c.db.SetSync(cacheKey(challengeID), buf)
}

// DidChallengeFailRecently reports whether challengeID has an unexpired
// negative-cache entry.
func (c *Cache) DidChallengeFailRecently(challengeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.db.Get(cacheKey(challengeID))
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	expireAt := int64(binary.BigEndian.Uint64(v))
	return expireAt > c.now().Unix(), nil
}

// ClearOutdatedChallenges removes every entry whose expiry has passed.
func (c *Cache) ClearOutdatedChallenges() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	end := append(append([]byte{}, keyPrefix...), 0xff)
	it, err := c.db.Iterator(keyPrefix, end)
	if err != nil {
		return err
	}
	defer it.Close()

	now := c.now().Unix()
	var toDelete [][]byte
	for ; it.Valid(); it.Next() {
		v := it.Value()
		if len(v) != 8 {
			continue
		}
		expireAt := int64(binary.BigEndian.Uint64(v))
		if expireAt <= now {
			key := append([]byte{}, it.Key()...)
			toDelete = append(toDelete, key)
		}
	}
	if err := it.Error(); err != nil {
		return err
	}

	for _, k := range toDelete {
		if err := c.db.DeleteSync(k); err != nil {
			return err
		}
	}
	return nil
}
