// Copyright 2025 Certen Protocol
//
// The begin/end bundle state machine (§4.2): FREE -> CLAIMED(stub) ->
// COMMITTED(bundleId) -> PROVED(bundleId, txHash). beginBundle is
// implemented as a single filtered update-many (set bundleId where
// currently unset) followed by a read of the claimed set — never as a
// prior read followed by a write — so two concurrent calls with distinct
// stub ids observe disjoint entity sets.
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vaultledger/node/pkg/entity"
)

// ClaimedBundle is the set of entities claimed by a beginBundle call.
type ClaimedBundle struct {
	Assets []*entity.Asset
	Events []*entity.Event
}

var unclaimed = bson.D{{Key: "metadata.bundleId", Value: bson.D{{Key: "$exists", Value: false}}}}

// BeginBundle atomically claims every currently-unbundled asset and event
// under stubID and returns them.
func (r *Repository) BeginBundle(ctx context.Context, stubID string) (*ClaimedBundle, error) {
	setStub := bson.D{{Key: "$set", Value: bson.D{{Key: "metadata.bundleId", Value: stubID}}}}

	if _, err := r.assets.UpdateMany(ctx, unclaimed, setStub); err != nil {
		return nil, fmt.Errorf("begin bundle: claim assets: %w", err)
	}
	if _, err := r.events.UpdateMany(ctx, unclaimed, setStub); err != nil {
		return nil, fmt.Errorf("begin bundle: claim events: %w", err)
	}

	claimedFilter := bson.D{{Key: "metadata.bundleId", Value: stubID}}

	assetCur, err := r.assets.Find(ctx, claimedFilter)
	if err != nil {
		return nil, fmt.Errorf("begin bundle: read claimed assets: %w", err)
	}
	defer assetCur.Close(ctx)
	var assets []*entity.Asset
	for assetCur.Next(ctx) {
		var a entity.Asset
		if err := assetCur.Decode(&a); err != nil {
			return nil, fmt.Errorf("begin bundle: decode asset: %w", err)
		}
		assets = append(assets, &a)
	}
	if err := assetCur.Err(); err != nil {
		return nil, err
	}

	eventCur, err := r.events.Find(ctx, claimedFilter)
	if err != nil {
		return nil, fmt.Errorf("begin bundle: read claimed events: %w", err)
	}
	defer eventCur.Close(ctx)
	var events []*entity.Event
	for eventCur.Next(ctx) {
		var e entity.Event
		if err := eventCur.Decode(&e); err != nil {
			return nil, fmt.Errorf("begin bundle: decode event: %w", err)
		}
		events = append(events, &e)
	}
	if err := eventCur.Err(); err != nil {
		return nil, err
	}

	return &ClaimedBundle{Assets: assets, Events: events}, nil
}

// EndBundle rewrites stubID to bundleID across every entity claimed under
// stubID. Idempotent: a repeat call with the same (stubID, bundleID) finds
// nothing still tagged with stubID and is a no-op.
func (r *Repository) EndBundle(ctx context.Context, stubID, bundleID string) error {
	filter := bson.D{{Key: "metadata.bundleId", Value: stubID}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "metadata.bundleId", Value: bundleID}}}}

	if _, err := r.assets.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("end bundle: rewrite assets: %w", err)
	}
	if _, err := r.events.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("end bundle: rewrite events: %w", err)
	}
	return nil
}

// StoreBundleProofMetadata persists the bundle's on-chain proof and
// propagates bundleTransactionHash to every entity committed under
// bundleID.
func (r *Repository) StoreBundleProofMetadata(ctx context.Context, bundleID string, proofBlock int64, txHash string) error {
	bundleUpdate := bson.D{{Key: "$set", Value: bson.D{
		{Key: "metadata.proofBlock", Value: proofBlock},
		{Key: "metadata.bundleTransactionHash", Value: txHash},
	}}}
	res, err := r.bundles.UpdateOne(ctx, bson.D{{Key: "bundleId", Value: bundleID}}, bundleUpdate)
	if err != nil {
		return fmt.Errorf("store bundle proof metadata: update bundle: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("store bundle proof metadata: bundle %s not found", bundleID)
	}

	entityFilter := bson.D{{Key: "metadata.bundleId", Value: bundleID}}
	entityUpdate := bson.D{{Key: "$set", Value: bson.D{{Key: "metadata.bundleTransactionHash", Value: txHash}}}}

	if _, err := r.assets.UpdateMany(ctx, entityFilter, entityUpdate); err != nil {
		return fmt.Errorf("store bundle proof metadata: propagate to assets: %w", err)
	}
	if _, err := r.events.UpdateMany(ctx, entityFilter, entityUpdate); err != nil {
		return fmt.Errorf("store bundle proof metadata: propagate to events: %w", err)
	}
	return nil
}
