// Copyright 2025 Certen Protocol
//
// Pluggable worker strategies (§9): capability-set interfaces, not a base
// class hierarchy — grounded on the reference implementation's chain
// Strategy interface idiom (platform-specific behavior bound to a small
// interface the worker holds, rather than switch-on-type branching).
package worker

import (
	"time"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/entity"
)

// UploadStrategy governs the Upload worker's per-tick bundling decisions.
type UploadStrategy interface {
	// StoragePeriods is queried once per tick and passed through to
	// checkIfEnoughFundsForUpload and finaliseBundling.
	StoragePeriods() int
	// ShouldBundle decides whether an in-progress bundle is ready to be
	// finalised and uploaded this tick.
	ShouldBundle(bundle *enginecore.InProgressBundle) bool
	// BundlingSucceeded notifies the strategy a bundle was uploaded.
	BundlingSucceeded(bundle *entity.Bundle)
}

// ChallengeParticipationStrategy governs the Challenge worker's per-challenge
// participation decisions.
type ChallengeParticipationStrategy interface {
	// ShouldFetchBundle decides whether to download the challenged bundle
	// from its shelterer at all.
	ShouldFetchBundle(c chainclient.Challenge) bool
	// ShouldResolveChallenge decides whether a successfully downloaded and
	// validated bundle should be used to resolve its challenge.
	ShouldResolveChallenge(bundle *entity.Bundle) bool
	// AfterChallengeResolution notifies the strategy a challenge was
	// resolved using bundle.
	AfterChallengeResolution(bundle *entity.Bundle)
	// RetryTimeout is the failed-challenge cache TTL applied after any
	// failure in the tryWithChallenge flow.
	RetryTimeout() time.Duration
}
