// Copyright 2025 Certen Protocol
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/challengecache"
	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/entity/schema"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/identity"
)

// fakePeerFetcher serves a scripted raw bundle or error, keyed by bundleId.
type fakePeerFetcher struct {
	raw map[string][]byte
	err error
}

func (f *fakePeerFetcher) FetchBundle(ctx context.Context, bundleID, sheltererID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.raw[bundleID]
	if !ok {
		return nil, fmt.Errorf("fake peer fetcher: no bundle %s", bundleID)
	}
	return raw, nil
}

// alwaysStrategy drives ShouldFetchBundle/ShouldResolveChallenge from fixed
// bools and counts AfterChallengeResolution calls.
type alwaysStrategy struct {
	fetch         bool
	resolve       bool
	resolutions   []string
	retryTimeout  time.Duration
}

func (s *alwaysStrategy) ShouldFetchBundle(c chainclient.Challenge) bool  { return s.fetch }
func (s *alwaysStrategy) ShouldResolveChallenge(b *entity.Bundle) bool    { return s.resolve }
func (s *alwaysStrategy) AfterChallengeResolution(b *entity.Bundle) {
	s.resolutions = append(s.resolutions, b.BundleID)
}
func (s *alwaysStrategy) RetryTimeout() time.Duration { return s.retryTimeout }

func buildSignedBundle(t *testing.T) (*entity.Bundle, []byte) {
	t.Helper()
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)

	v := entity.New(schema.Predefined(), identity.Default, entity.WithClock(func() int64 { return 1000 }))
	bundle, err := v.AssembleBundle(nil, nil, 1000, secret)
	require.NoError(t, err)

	raw, err := json.Marshal(bundle)
	require.NoError(t, err)
	return bundle, raw
}

func newTestEngine(t *testing.T, peers enginecore.PeerFetcher, expiration chainclient.ExpirationUpdater) *enginecore.Engine {
	t.Helper()
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	validator := entity.New(schema.Predefined(), identity.Default)
	return enginecore.New(nil, validator, nil, nil, expiration, peers, secret)
}

func TestChallengeWorker_ResolvesFirstChallengeOnly(t *testing.T) {
	bundle, raw := buildSignedBundle(t)

	peers := &fakePeerFetcher{raw: map[string][]byte{bundle.BundleID: raw}}
	expiration := &chainclient.FakeExpirationUpdater{}
	engine := newTestEngine(t, peers, expiration)

	challenges := &chainclient.FakeChallengesRepository{Challenges: []chainclient.Challenge{
		{ChallengeID: "c1", BundleID: bundle.BundleID, SheltererID: "shelterer-1"},
		{ChallengeID: "c2", BundleID: bundle.BundleID, SheltererID: "shelterer-2"},
	}}
	cache := challengecache.New(dbm.NewMemDB())
	strategy := &alwaysStrategy{fetch: true, resolve: true, retryTimeout: time.Minute}

	w := NewChallengeWorker(engine, challenges, cache, strategy, NopAuditLogger{}, nil)
	require.NoError(t, w.Tick(context.Background()))

	require.Equal(t, []string{"c1"}, challenges.Resolved)
	require.Equal(t, []string{bundle.BundleID}, expiration.Updated)
	require.Equal(t, []string{bundle.BundleID}, strategy.resolutions)
}

func TestChallengeWorker_SkipsRecentlyFailedChallenge(t *testing.T) {
	bundle, raw := buildSignedBundle(t)
	peers := &fakePeerFetcher{raw: map[string][]byte{bundle.BundleID: raw}}
	expiration := &chainclient.FakeExpirationUpdater{}
	engine := newTestEngine(t, peers, expiration)

	challenges := &chainclient.FakeChallengesRepository{Challenges: []chainclient.Challenge{
		{ChallengeID: "c1", BundleID: bundle.BundleID, SheltererID: "shelterer-1"},
	}}
	cache := challengecache.New(dbm.NewMemDB())
	require.NoError(t, cache.RememberFailedChallenge("c1", time.Hour))

	strategy := &alwaysStrategy{fetch: true, resolve: true, retryTimeout: time.Minute}
	w := NewChallengeWorker(engine, challenges, cache, strategy, NopAuditLogger{}, nil)
	require.NoError(t, w.Tick(context.Background()))

	require.Empty(t, challenges.Resolved)
}

func TestChallengeWorker_DownloadFailureRemembersAndContinues(t *testing.T) {
	peers := &fakePeerFetcher{err: fmt.Errorf("peer unreachable")}
	expiration := &chainclient.FakeExpirationUpdater{}
	engine := newTestEngine(t, peers, expiration)

	challenges := &chainclient.FakeChallengesRepository{Challenges: []chainclient.Challenge{
		{ChallengeID: "c1", BundleID: "0xdead", SheltererID: "shelterer-1"},
	}}
	cache := challengecache.New(dbm.NewMemDB())
	strategy := &alwaysStrategy{fetch: true, resolve: true, retryTimeout: time.Minute}

	w := NewChallengeWorker(engine, challenges, cache, strategy, NopAuditLogger{}, nil)
	require.NoError(t, w.Tick(context.Background()))

	require.Empty(t, challenges.Resolved)
	failed, err := cache.DidChallengeFailRecently("c1")
	require.NoError(t, err)
	require.True(t, failed)
}

func TestChallengeWorker_StrategyDeclinesFetch(t *testing.T) {
	peers := &fakePeerFetcher{}
	expiration := &chainclient.FakeExpirationUpdater{}
	engine := newTestEngine(t, peers, expiration)

	challenges := &chainclient.FakeChallengesRepository{Challenges: []chainclient.Challenge{
		{ChallengeID: "c1", BundleID: "0xdead", SheltererID: "shelterer-1"},
	}}
	cache := challengecache.New(dbm.NewMemDB())
	strategy := &alwaysStrategy{fetch: false, retryTimeout: time.Minute}

	w := NewChallengeWorker(engine, challenges, cache, strategy, NopAuditLogger{}, nil)
	require.NoError(t, w.Tick(context.Background()))

	require.Empty(t, challenges.Resolved)
	failed, err := cache.DidChallengeFailRecently("c1")
	require.NoError(t, err)
	require.False(t, failed, "declining to fetch is not a failure")
}
