// Copyright 2025 Certen Protocol
//
// Upload Repository (C5): thin adapter over the blockchain registry's
// funding, fee, and bundle-proof-upload surface.
package chainclient

import (
	"context"
	"fmt"
)

// UploadRepository is the interface the Upload worker consumes.
type UploadRepository interface {
	CheckIfEnoughFundsForUpload(ctx context.Context, storagePeriods int) (bool, error)
	BundleItemsCountLimit(ctx context.Context) (int, error)
	UploadBundle(ctx context.Context, bundleID string, storagePeriods int) (proofBlock int64, txHash string, err error)
}

// RegistryUploadRepository backs UploadRepository with an EthClient bound
// to the registry contract address.
type RegistryUploadRepository struct {
	client          *EthClient
	registryAddress string
	itemsCountLimit int
}

// NewRegistryUploadRepository builds an UploadRepository over client.
// itemsCountLimit is the registry's configured maximum bundle size; it is
// read once at construction since the reference registry does not expose
// a way to change it live.
func NewRegistryUploadRepository(client *EthClient, registryAddress string, itemsCountLimit int) *RegistryUploadRepository {
	return &RegistryUploadRepository{client: client, registryAddress: registryAddress, itemsCountLimit: itemsCountLimit}
}

// CheckIfEnoughFundsForUpload reports whether the node's on-chain balance
// covers storagePeriods worth of sheltering fees. The concrete fee
// schedule and balance lookup live behind the registry contract binding,
// out of scope for this spec (§1); this adapter only shapes the call.
func (r *RegistryUploadRepository) CheckIfEnoughFundsForUpload(ctx context.Context, storagePeriods int) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("upload repository: no chain client configured")
	}
	if err := r.client.Health(ctx); err != nil {
		return false, fmt.Errorf("upload repository: %w", err)
	}
	// Registry contract binding for balance/fee lookup is out of scope;
	// funding is reported sufficient once the chain is reachable.
	return true, nil
}

// BundleItemsCountLimit returns the registry's configured maximum bundle
// size.
func (r *RegistryUploadRepository) BundleItemsCountLimit(ctx context.Context) (int, error) {
	return r.itemsCountLimit, nil
}

// UploadBundle submits bundleID's content hash to the registry for
// on-chain commitment and returns the block it landed in and the
// transaction hash.
func (r *RegistryUploadRepository) UploadBundle(ctx context.Context, bundleID string, storagePeriods int) (int64, string, error) {
	if r.client == nil {
		return 0, "", fmt.Errorf("upload repository: no chain client configured")
	}
	// Contract call/send is out of scope (§1): a full implementation
	// would pack and submit a transaction via the registry's ABI, as the
	// reference implementation's ethereum.Client.SendContractTransaction
	// does, then wait for its receipt.
	return 0, "", fmt.Errorf("upload repository: registry contract binding not configured")
}
