// Copyright 2025 Certen Protocol
//
// Default strategy implementations: the spec defines the strategy
// interfaces' shape (§9) but leaves concrete bundling/participation
// policy to the operator. These defaults bundle whenever anything has
// been claimed and always participate in challenges — a reasonable
// baseline a deployment can replace without touching the workers.
package worker

import (
	"time"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/entity"
)

// DefaultUploadStrategy bundles whenever the claimed set is non-empty.
type DefaultUploadStrategy struct {
	Periods int
}

func (s *DefaultUploadStrategy) StoragePeriods() int { return s.Periods }

func (s *DefaultUploadStrategy) ShouldBundle(bundle *enginecore.InProgressBundle) bool {
	return bundle.EntryCount() > 0
}

func (s *DefaultUploadStrategy) BundlingSucceeded(bundle *entity.Bundle) {}

// DefaultChallengeStrategy always fetches and resolves challenges it sees.
type DefaultChallengeStrategy struct {
	Timeout time.Duration
}

func (s *DefaultChallengeStrategy) ShouldFetchBundle(c chainclient.Challenge) bool { return true }

func (s *DefaultChallengeStrategy) ShouldResolveChallenge(bundle *entity.Bundle) bool { return true }

func (s *DefaultChallengeStrategy) AfterChallengeResolution(bundle *entity.Bundle) {}

func (s *DefaultChallengeStrategy) RetryTimeout() time.Duration { return s.Timeout }
