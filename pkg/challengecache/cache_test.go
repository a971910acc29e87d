// Copyright 2025 Certen Protocol
package challengecache

import (
	"testing"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, at time.Time) *Cache {
	t.Helper()
	c := New(dbm.NewMemDB())
	c.now = func() time.Time { return at }
	return c
}

func TestDidChallengeFailRecently_UnknownChallenge(t *testing.T) {
	c := newTestCache(t, time.Unix(1000, 0))
	failed, err := c.DidChallengeFailRecently("ch-1")
	require.NoError(t, err)
	require.False(t, failed)
}

func TestRememberFailedChallenge_ThenRecentlyFailed(t *testing.T) {
	base := time.Unix(1000, 0)
	c := newTestCache(t, base)

	require.NoError(t, c.RememberFailedChallenge("ch-1", time.Minute))

	failed, err := c.DidChallengeFailRecently("ch-1")
	require.NoError(t, err)
	require.True(t, failed)
}

func TestRememberFailedChallenge_ExpiresAfterTTL(t *testing.T) {
	base := time.Unix(1000, 0)
	c := newTestCache(t, base)
	require.NoError(t, c.RememberFailedChallenge("ch-1", time.Minute))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	failed, err := c.DidChallengeFailRecently("ch-1")
	require.NoError(t, err)
	require.False(t, failed)
}

func TestRememberFailedChallenge_LastWriteWins(t *testing.T) {
	base := time.Unix(1000, 0)
	c := newTestCache(t, base)

	require.NoError(t, c.RememberFailedChallenge("ch-1", time.Second))
	require.NoError(t, c.RememberFailedChallenge("ch-1", time.Hour))

	c.now = func() time.Time { return base.Add(2 * time.Second) }
	failed, err := c.DidChallengeFailRecently("ch-1")
	require.NoError(t, err)
	require.True(t, failed)
}

func TestClearOutdatedChallenges_RemovesOnlyExpired(t *testing.T) {
	base := time.Unix(1000, 0)
	c := newTestCache(t, base)

	require.NoError(t, c.RememberFailedChallenge("expired", time.Second))
	require.NoError(t, c.RememberFailedChallenge("still-valid", time.Hour))

	c.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, c.ClearOutdatedChallenges())

	v, err := c.db.Get(cacheKey("expired"))
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = c.db.Get(cacheKey("still-valid"))
	require.NoError(t, err)
	require.NotNil(t, v)
}
