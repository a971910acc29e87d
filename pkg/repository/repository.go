// Copyright 2025 Certen Protocol
//
// Entity Repository (C3): durable storage for assets, events, and bundles,
// a query engine with access-level redaction, and the begin/end bundle
// state machine. Records are persisted verbatim; identifiers are the
// primary key within each collection.
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vaultledger/node/pkg/entity"
)

const (
	assetsCollection  = "assets"
	eventsCollection  = "events"
	bundlesCollection = "bundles"
)

// Repository is the concrete, mongo-backed Entity Repository.
type Repository struct {
	assets  *mongo.Collection
	events  *mongo.Collection
	bundles *mongo.Collection
}

// New builds a Repository over client's three logical collections.
func New(client *Client) *Repository {
	return &Repository{
		assets:  client.Collection(assetsCollection),
		events:  client.Collection(eventsCollection),
		bundles: client.Collection(bundlesCollection),
	}
}

// EnsureIndexes creates the indexes the repository's queries assume:
// unique ids, and the 2d geo index the query builder's $near predicate
// relies on. Intended to be called once at startup.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.assets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assetId", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("ensure asset index: %w", err)
	}
	if _, err := r.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("ensure event index: %w", err)
	}
	// content.data.geoJson is stored as the schema validates it: a plain
	// {lon, lat} embedded document (C2, KindGeoPoint), not a GeoJSON Point.
	// A legacy "2d" index (rather than "2dsphere") is what Mongo supports
	// over that shape; buildEventFilter's $near query matches it with a
	// legacy coordinate pair.
	if _, err := r.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "content.data.geoJson", Value: "2d"}},
	}); err != nil {
		return fmt.Errorf("ensure event geo index: %w", err)
	}
	if _, err := r.bundles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bundleId", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("ensure bundle index: %w", err)
	}
	return nil
}

// StoreAsset persists a, verbatim.
func (r *Repository) StoreAsset(ctx context.Context, a *entity.Asset) error {
	_, err := r.assets.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("store asset: %w", err)
	}
	return nil
}

// GetAsset returns the asset stored under id, or nil if none exists.
func (r *Repository) GetAsset(ctx context.Context, id string) (*entity.Asset, error) {
	var a entity.Asset
	err := r.assets.FindOne(ctx, bson.D{{Key: "assetId", Value: id}}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return &a, nil
}

// StoreEvent persists e, verbatim.
func (r *Repository) StoreEvent(ctx context.Context, e *entity.Event) error {
	_, err := r.events.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("store event: %w", err)
	}
	return nil
}

// GetEvent returns the event stored under id, redacted to accessLevel, or
// nil if none exists.
func (r *Repository) GetEvent(ctx context.Context, id string, accessLevel int) (*entity.Event, error) {
	var e entity.Event
	err := r.events.FindOne(ctx, bson.D{{Key: "eventId", Value: id}}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return entity.Redact(&e, accessLevel), nil
}

// FindResult is the paged, redacted result of FindEvents.
type FindResult struct {
	Results     []*entity.Event
	ResultCount int64
}

// FindEvents returns the newest-first page of events matching params,
// with per-result redaction applied against accessLevel.
func (r *Repository) FindEvents(ctx context.Context, params *entity.FindEventsParams, accessLevel int) (*FindResult, error) {
	filter := buildEventFilter(params, accessLevel)

	total, err := r.events.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find events: count: %w", err)
	}

	page := params.Page
	perPage := params.PerPage
	findOpts := options.Find().
		SetSort(bson.D{{Key: "content.idData.timestamp", Value: -1}}).
		SetSkip(int64(page) * int64(perPage)).
		SetLimit(int64(perPage))

	cur, err := r.events.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var results []*entity.Event
	for cur.Next(ctx) {
		var e entity.Event
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("find events: decode: %w", err)
		}
		results = append(results, entity.Redact(&e, accessLevel))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find events: cursor: %w", err)
	}

	return &FindResult{Results: results, ResultCount: total}, nil
}

// StoreBundle persists b, verbatim.
func (r *Repository) StoreBundle(ctx context.Context, b *entity.Bundle) error {
	_, err := r.bundles.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("store bundle: %w", err)
	}
	return nil
}

// GetBundle returns the bundle stored under id, with its proof metadata
// folded into metadata, or nil if none exists.
func (r *Repository) GetBundle(ctx context.Context, id string) (*entity.Bundle, error) {
	var b entity.Bundle
	err := r.bundles.FindOne(ctx, bson.D{{Key: "bundleId", Value: id}}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bundle: %w", err)
	}
	return &b, nil
}

// BundlesMissingProof returns bundles stored without a bundleTransactionHash
// — the crash-recovery discovery set for uploadNotRegisteredBundles (§7).
func (r *Repository) BundlesMissingProof(ctx context.Context) ([]*entity.Bundle, error) {
	filter := bson.D{{Key: "metadata.bundleTransactionHash", Value: bson.D{{Key: "$exists", Value: false}}}}
	cur, err := r.bundles.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("bundles missing proof: %w", err)
	}
	defer cur.Close(ctx)

	var out []*entity.Bundle
	for cur.Next(ctx) {
		var b entity.Bundle
		if err := cur.Decode(&b); err != nil {
			return nil, fmt.Errorf("bundles missing proof: decode: %w", err)
		}
		out = append(out, &b)
	}
	return out, cur.Err()
}
