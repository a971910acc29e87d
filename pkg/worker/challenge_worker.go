// Copyright 2025 Certen Protocol
//
// Challenge Worker (§4.3.2): resolves at most one ongoing shelter challenge
// per tick, backed by a failed-challenge negative cache so a persistently
// unresolvable challenge is not retried every tick.
package worker

import (
	"fmt"
	"log"

	"context"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/challengecache"
	"github.com/vaultledger/node/pkg/enginecore"
)

// ChallengeWorker implements the Challenge worker's tick algorithm.
type ChallengeWorker struct {
	engine     *enginecore.Engine
	challenges chainclient.ChallengesRepository
	cache      *challengecache.Cache
	strategy   ChallengeParticipationStrategy
	audit      AuditLogger
	logger     *log.Logger
}

// NewChallengeWorker builds a ChallengeWorker.
func NewChallengeWorker(engine *enginecore.Engine, challenges chainclient.ChallengesRepository, cache *challengecache.Cache, strategy ChallengeParticipationStrategy, audit AuditLogger, logger *log.Logger) *ChallengeWorker {
	if logger == nil {
		logger = log.New(log.Writer(), "[ChallengeWorker] ", log.LstdFlags)
	}
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &ChallengeWorker{
		engine:     engine,
		challenges: challenges,
		cache:      cache,
		strategy:   strategy,
		audit:      audit,
		logger:     logger,
	}
}

// Tick runs one Challenge worker tick.
func (w *ChallengeWorker) Tick(ctx context.Context) error {
	challenges, err := w.challenges.OngoingChallenges(ctx)
	if err != nil {
		ticksTotal.WithLabelValues("challenge", "error").Inc()
		return err
	}
	w.logger.Printf("%d ongoing challenge(s)", len(challenges))

	for _, c := range challenges {
		if w.tryWithChallenge(ctx, c) {
			ticksTotal.WithLabelValues("challenge", "resolved").Inc()
			break
		}
	}

	if err := w.cache.ClearOutdatedChallenges(); err != nil {
		w.logger.Printf("clear outdated challenges failed: %v", err)
	}
	return nil
}

// tryWithChallenge attempts to resolve a single challenge. Any failure
// along the flow is remembered in the negative cache and logged, never
// propagated: the caller must keep trying subsequent challenges.
func (w *ChallengeWorker) tryWithChallenge(ctx context.Context, c chainclient.Challenge) bool {
	failedRecently, err := w.cache.DidChallengeFailRecently(c.ChallengeID)
	if err != nil {
		w.logger.Printf("failed-challenge cache lookup error: %v", err)
		return false
	}
	if failedRecently {
		return false
	}

	if !w.strategy.ShouldFetchBundle(c) {
		w.logger.Println("Decided not to download bundle")
		return false
	}

	bundle, err := w.engine.DownloadBundle(ctx, c.BundleID, c.SheltererID)
	if err != nil {
		w.rememberFailure(ctx, c.ChallengeID, fmt.Errorf("download bundle: %w", err))
		return false
	}

	if !w.strategy.ShouldResolveChallenge(bundle) {
		w.logger.Println("Challenge resolution cancelled")
		return false
	}

	if err := w.challenges.ResolveChallenge(ctx, c.ChallengeID); err != nil {
		w.rememberFailure(ctx, c.ChallengeID, fmt.Errorf("resolve challenge: %w", err))
		return false
	}
	if err := w.engine.UpdateShelteringExpirationDate(ctx, bundle.BundleID); err != nil {
		w.rememberFailure(ctx, c.ChallengeID, fmt.Errorf("update sheltering expiration: %w", err))
		return false
	}

	w.strategy.AfterChallengeResolution(bundle)
	_ = w.audit.LogTick(ctx, "challenge", "resolved challenge "+c.ChallengeID)
	challengesResolvedTotal.Inc()
	return true
}

func (w *ChallengeWorker) rememberFailure(ctx context.Context, challengeID string, cause error) {
	w.logger.Printf("challenge %s failed: %+v", challengeID, cause)
	_ = w.audit.LogTick(ctx, "challenge", fmt.Sprintf("challenge %s failed: %v", challengeID, cause))
	if err := w.cache.RememberFailedChallenge(challengeID, w.strategy.RetryTimeout()); err != nil {
		w.logger.Printf("failed to remember failed challenge %s: %v", challengeID, err)
	}
}
