// Copyright 2025 Certen Protocol
package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/enginecore"
	"github.com/vaultledger/node/pkg/entity"
)

func TestDefaultUploadStrategy_ShouldBundleOnlyWhenNonEmpty(t *testing.T) {
	s := &DefaultUploadStrategy{Periods: 3}
	require.Equal(t, 3, s.StoragePeriods())

	require.False(t, s.ShouldBundle(&enginecore.InProgressBundle{}))
	require.True(t, s.ShouldBundle(&enginecore.InProgressBundle{Assets: []*entity.Asset{{}}}))
	require.True(t, s.ShouldBundle(&enginecore.InProgressBundle{Events: []*entity.Event{{}}}))

	// BundlingSucceeded is a no-op; just confirm it doesn't panic.
	s.BundlingSucceeded(&entity.Bundle{})
}

func TestDefaultChallengeStrategy_AlwaysParticipates(t *testing.T) {
	s := &DefaultChallengeStrategy{Timeout: 10 * time.Minute}

	require.True(t, s.ShouldFetchBundle(chainclient.Challenge{}))
	require.True(t, s.ShouldResolveChallenge(&entity.Bundle{}))
	require.Equal(t, 10*time.Minute, s.RetryTimeout())

	s.AfterChallengeResolution(&entity.Bundle{})
}
