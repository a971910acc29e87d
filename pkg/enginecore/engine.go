// Copyright 2025 Certen Protocol
//
// Data Model Engine (C4): orchestrates the Entity Validator (C2), Entity
// Repository (C3), and Upload/Challenges Repository (C5) adapters into the
// two composite flows the periodic workers drive — bundling an assembled
// set of claimed entities and sheltering a peer's bundle after a resolved
// challenge.
package enginecore

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/google/uuid"

	"github.com/vaultledger/node/pkg/chainclient"
	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/repository"
)

// PeerFetcher retrieves a candidate bundle's raw JSON from a peer
// shelterer, prior to local validation. The wire transport is out of
// scope (§6); this interface only shapes the call the Challenge worker's
// downloadBundle flow needs.
type PeerFetcher interface {
	FetchBundle(ctx context.Context, bundleID, sheltererID string) ([]byte, error)
}

// InProgressBundle is a bundle-in-progress returned by initialiseBundling:
// a set of entities claimed under stubID, not yet assembled or uploaded.
type InProgressBundle struct {
	StubID         string
	Assets         []*entity.Asset
	Events         []*entity.Event
	SequenceNumber int64
}

// EntryCount is the total number of entities claimed into this
// in-progress bundle.
func (b *InProgressBundle) EntryCount() int {
	return len(b.Assets) + len(b.Events)
}

// Engine is the concrete Data Model Engine.
type Engine struct {
	repo       *repository.Repository
	validator  *entity.Validator
	uploads    chainclient.UploadRepository
	challenges chainclient.ChallengesRepository
	expiration chainclient.ExpirationUpdater
	peers      PeerFetcher
	secret     *ecdsa.PrivateKey
	now        func() int64

	// recoveryStoragePeriods is used when re-attempting an upload whose
	// original storagePeriods value was not recorded alongside the
	// bundle (§7's crash-recovery sweep only persists the bundle itself).
	recoveryStoragePeriods int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now", for deterministic tests.
func WithClock(now func() int64) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecoveryStoragePeriods overrides the storagePeriods value used by
// uploadNotRegisteredBundles.
func WithRecoveryStoragePeriods(periods int) Option {
	return func(e *Engine) { e.recoveryStoragePeriods = periods }
}

// New builds an Engine. secret signs every bundle this node assembles.
func New(
	repo *repository.Repository,
	validator *entity.Validator,
	uploads chainclient.UploadRepository,
	challenges chainclient.ChallengesRepository,
	expiration chainclient.ExpirationUpdater,
	peers PeerFetcher,
	secret *ecdsa.PrivateKey,
	opts ...Option,
) *Engine {
	e := &Engine{
		repo:                   repo,
		validator:              validator,
		uploads:                uploads,
		challenges:             challenges,
		expiration:             expiration,
		peers:                  peers,
		secret:                 secret,
		recoveryStoragePeriods: 1,
	}
	for _, o := range opts {
		o(e)
	}
	if e.now == nil {
		e.now = nowUnix
	}
	return e
}

// CreateAsset validates raw against the Entity Validator and, on success,
// persists it.
func (e *Engine) CreateAsset(ctx context.Context, raw []byte) (*entity.Asset, error) {
	a, err := e.validator.ValidateAsset(raw)
	if err != nil {
		return nil, err
	}
	if err := e.repo.StoreAsset(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateEvent validates raw against the Entity Validator and, on success,
// persists it.
func (e *Engine) CreateEvent(ctx context.Context, raw []byte) (*entity.Event, error) {
	ev, err := e.validator.ValidateEvent(raw)
	if err != nil {
		return nil, err
	}
	if err := e.repo.StoreEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// InitialiseBundling claims every currently-unbundled entity under a fresh
// stub id and returns an in-progress bundle capped at itemsCountLimit
// entries. Entities claimed beyond the cap remain tagged with the stub:
// the spec defines no "unclaim" operation, so excess is folded into the
// bundle the next initialiseBundling call against the same stub would see,
// rather than released back to FREE.
func (e *Engine) InitialiseBundling(ctx context.Context, sequenceNumber int64, itemsCountLimit int) (*InProgressBundle, error) {
	stubID := uuid.NewString()

	claimed, err := e.repo.BeginBundle(ctx, stubID)
	if err != nil {
		return nil, fmt.Errorf("initialise bundling: %w", err)
	}

	assets, events := capEntries(claimed.Assets, claimed.Events, itemsCountLimit)

	return &InProgressBundle{
		StubID:         stubID,
		Assets:         assets,
		Events:         events,
		SequenceNumber: sequenceNumber,
	}, nil
}

func capEntries(assets []*entity.Asset, events []*entity.Event, limit int) ([]*entity.Asset, []*entity.Event) {
	if limit <= 0 {
		return assets, events
	}
	if len(assets) > limit {
		assets = assets[:limit]
		return assets, nil
	}
	remaining := limit - len(assets)
	if len(events) > remaining {
		events = events[:remaining]
	}
	return assets, events
}

// FinaliseBundling assembles, signs, persists, and uploads bundle. On
// success it rewrites the claim from bundle.StubID to the assembled
// bundle id and stores the on-chain proof metadata, returning the
// finished bundle. On any failure along that chain it returns a nil
// bundle and the error: the caller (Upload worker) must not advance its
// sequence number in that case.
func (e *Engine) FinaliseBundling(ctx context.Context, bundle *InProgressBundle, sequenceNumber int64, storagePeriods int) (*entity.Bundle, error) {
	timestamp := e.now()

	assembled, err := e.validator.AssembleBundle(bundle.Assets, bundle.Events, timestamp, e.secret)
	if err != nil {
		return nil, fmt.Errorf("finalise bundling: assemble: %w", err)
	}

	if err := e.repo.StoreBundle(ctx, assembled); err != nil {
		return nil, fmt.Errorf("finalise bundling: store: %w", err)
	}

	proofBlock, txHash, err := e.uploads.UploadBundle(ctx, assembled.BundleID, storagePeriods)
	if err != nil {
		return nil, fmt.Errorf("finalise bundling: upload: %w", err)
	}

	if err := e.repo.EndBundle(ctx, bundle.StubID, assembled.BundleID); err != nil {
		return nil, fmt.Errorf("finalise bundling: end bundle: %w", err)
	}

	if err := e.repo.StoreBundleProofMetadata(ctx, assembled.BundleID, proofBlock, txHash); err != nil {
		return nil, fmt.Errorf("finalise bundling: store proof metadata: %w", err)
	}

	return assembled, nil
}

// CancelBundling is a no-op placeholder: the spec defines no "unclaim"
// operation, so canceling a bundling attempt only suppresses the caller's
// sequence-number increment. Entities stay claimed under the stub and are
// picked up by the next initialiseBundling call.
func (e *Engine) CancelBundling(ctx context.Context, sequenceNumber int64) error {
	return nil
}

// UploadNotRegisteredBundles re-attempts upload for every bundle stored
// without a bundleTransactionHash — the crash-recovery path of §7. A
// per-bundle failure is skipped, not fatal to the sweep; it is retried on
// the next call.
func (e *Engine) UploadNotRegisteredBundles(ctx context.Context) ([]*entity.Bundle, error) {
	pending, err := e.repo.BundlesMissingProof(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload not registered bundles: %w", err)
	}

	var recovered []*entity.Bundle
	for _, b := range pending {
		proofBlock, txHash, err := e.uploads.UploadBundle(ctx, b.BundleID, e.recoveryStoragePeriods)
		if err != nil {
			continue
		}
		if err := e.repo.StoreBundleProofMetadata(ctx, b.BundleID, proofBlock, txHash); err != nil {
			continue
		}
		recovered = append(recovered, b)
	}
	return recovered, nil
}

// DownloadBundle fetches bundleId from sheltererId and validates it before
// returning it to the caller.
func (e *Engine) DownloadBundle(ctx context.Context, bundleID, sheltererID string) (*entity.Bundle, error) {
	raw, err := e.peers.FetchBundle(ctx, bundleID, sheltererID)
	if err != nil {
		return nil, fmt.Errorf("download bundle: fetch: %w", err)
	}
	b, err := e.validator.ValidateBundle(raw)
	if err != nil {
		return nil, fmt.Errorf("download bundle: validate: %w", err)
	}
	return b, nil
}

// UpdateShelteringExpirationDate delegates to the chain-side expiration
// updater after a challenge on bundleID has been successfully resolved.
func (e *Engine) UpdateShelteringExpirationDate(ctx context.Context, bundleID string) error {
	if err := e.expiration.UpdateShelteringExpirationDate(ctx, bundleID); err != nil {
		return fmt.Errorf("update sheltering expiration date: %w", err)
	}
	return nil
}
