// Copyright 2025 Certen Protocol
//
// In-memory fakes of the registry adapters, used by worker and engine
// tests where a live chain RPC endpoint is unavailable.
package chainclient

import (
	"context"
	"fmt"
	"sync"
)

// FakeUploadRepository is a deterministic, in-process UploadRepository.
type FakeUploadRepository struct {
	mu              sync.Mutex
	EnoughFunds     bool
	ItemsLimit      int
	NextProofBlock  int64
	FailUpload      bool
	Uploaded        []string
}

func (f *FakeUploadRepository) CheckIfEnoughFundsForUpload(ctx context.Context, storagePeriods int) (bool, error) {
	return f.EnoughFunds, nil
}

func (f *FakeUploadRepository) BundleItemsCountLimit(ctx context.Context) (int, error) {
	if f.ItemsLimit == 0 {
		return 100, nil
	}
	return f.ItemsLimit, nil
}

func (f *FakeUploadRepository) UploadBundle(ctx context.Context, bundleID string, storagePeriods int) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUpload {
		return 0, "", fmt.Errorf("fake upload repository: forced failure")
	}
	f.NextProofBlock++
	f.Uploaded = append(f.Uploaded, bundleID)
	return f.NextProofBlock, "0x" + bundleID[2:], nil
}

// FakeChallengesRepository is a deterministic, in-process ChallengesRepository.
type FakeChallengesRepository struct {
	mu         sync.Mutex
	Challenges []Challenge
	Resolved   []string
}

func (f *FakeChallengesRepository) OngoingChallenges(ctx context.Context) ([]Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Challenge, len(f.Challenges))
	copy(out, f.Challenges)
	return out, nil
}

func (f *FakeChallengesRepository) ResolveChallenge(ctx context.Context, challengeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resolved = append(f.Resolved, challengeID)
	for i, c := range f.Challenges {
		if c.ChallengeID == challengeID {
			f.Challenges = append(f.Challenges[:i], f.Challenges[i+1:]...)
			break
		}
	}
	return nil
}

// FakeClient is a scripted, in-process Client: each call to IsSyncing pops
// the next entry off Responses, repeating the last entry once exhausted.
type FakeClient struct {
	mu        sync.Mutex
	Responses []FakeSyncResponse
	calls     int
}

// FakeSyncResponse is one scripted IsSyncing response.
type FakeSyncResponse struct {
	Syncing bool
	Status  *SyncStatus
	Err     error
}

func (f *FakeClient) IsSyncing(ctx context.Context) (bool, *SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.Responses) {
		i = len(f.Responses) - 1
	}
	f.calls++
	r := f.Responses[i]
	return r.Syncing, r.Status, r.Err
}

// Calls reports how many times IsSyncing has been invoked.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeExpirationUpdater is a deterministic, in-process ExpirationUpdater.
type FakeExpirationUpdater struct {
	mu      sync.Mutex
	Updated []string
	FailNext bool
}

func (f *FakeExpirationUpdater) UpdateShelteringExpirationDate(ctx context.Context, bundleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNext {
		f.FailNext = false
		return fmt.Errorf("fake expiration updater: forced failure")
	}
	f.Updated = append(f.Updated, bundleID)
	return nil
}
