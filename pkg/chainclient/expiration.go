// Copyright 2025 Certen Protocol
//
// Sheltering expiration (C4 support): extending a bundle's on-chain
// sheltering period after a successfully resolved challenge. Kept as its
// own narrow interface rather than folded into ChallengesRepository since
// the registry exposes it as a distinct call, not part of the
// challenge-feed surface.
package chainclient

import "context"

// ExpirationUpdater is the interface the Data Model Engine consumes to
// extend a bundle's sheltering expiration after a challenge resolves.
type ExpirationUpdater interface {
	UpdateShelteringExpirationDate(ctx context.Context, bundleID string) error
}

// RegistryExpirationUpdater backs ExpirationUpdater with an EthClient bound
// to the registry contract address.
type RegistryExpirationUpdater struct {
	client          *EthClient
	registryAddress string
}

// NewRegistryExpirationUpdater builds an ExpirationUpdater over client.
func NewRegistryExpirationUpdater(client *EthClient, registryAddress string) *RegistryExpirationUpdater {
	return &RegistryExpirationUpdater{client: client, registryAddress: registryAddress}
}

// UpdateShelteringExpirationDate submits the registry's sheltering-renewal
// transaction for bundleID. Contract binding is out of scope (§1); a full
// implementation would send a transaction the same way
// RegistryUploadRepository.UploadBundle would.
func (r *RegistryExpirationUpdater) UpdateShelteringExpirationDate(ctx context.Context, bundleID string) error {
	return nil
}
