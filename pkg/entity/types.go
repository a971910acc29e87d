// Copyright 2025 Certen Protocol
//
// Canonical entity shapes: Asset, Event, Bundle.
package entity

// AssetIDData is the signed identity payload of an Asset.
type AssetIDData struct {
	CreatedBy      string `json:"createdBy" bson:"createdBy"`
	Timestamp      int64  `json:"timestamp" bson:"timestamp"`
	SequenceNumber int64  `json:"sequenceNumber" bson:"sequenceNumber"`
}

// AssetContent is the hashed/signed body of an Asset.
type AssetContent struct {
	IDData    AssetIDData `json:"idData" bson:"idData"`
	Signature string      `json:"signature" bson:"signature"`
}

// AssetMetadata is server-side bookkeeping, never part of the hash.
type AssetMetadata struct {
	BundleID              string `json:"bundleId,omitempty" bson:"bundleId,omitempty"`
	BundleTransactionHash string `json:"bundleTransactionHash,omitempty" bson:"bundleTransactionHash,omitempty"`
}

// Asset is the root entity representing a physical or digital object.
type Asset struct {
	AssetID  string        `json:"assetId" bson:"assetId"`
	Content  AssetContent  `json:"content" bson:"content"`
	Metadata AssetMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// DataEntry is a single typed entry of an Event's content.data sequence.
// It is kept as a raw map so the schema registry can validate arbitrary,
// extensible entry shapes without this package knowing about every type.
type DataEntry map[string]interface{}

// Type returns the entry's "type" discriminator, or "" if absent/non-string.
func (e DataEntry) Type() string {
	t, _ := e["type"].(string)
	return t
}

// EventIDData is the signed identity payload of an Event.
type EventIDData struct {
	AssetID     string `json:"assetId" bson:"assetId"`
	CreatedBy   string `json:"createdBy" bson:"createdBy"`
	Timestamp   int64  `json:"timestamp" bson:"timestamp"`
	DataHash    string `json:"dataHash" bson:"dataHash"`
	AccessLevel int    `json:"accessLevel" bson:"accessLevel"`
}

// EventContent is the hashed/signed body of an Event. Data is omitted
// (nil, not empty) on redacted copies so JSON/BSON marshaling drops the
// field entirely rather than emitting an empty array.
type EventContent struct {
	IDData    EventIDData `json:"idData" bson:"idData"`
	Data      []DataEntry `json:"data,omitempty" bson:"data,omitempty"`
	Signature string      `json:"signature" bson:"signature"`
}

// EventMetadata is server-side bookkeeping, never part of the hash.
type EventMetadata struct {
	BundleID              string `json:"bundleId,omitempty" bson:"bundleId,omitempty"`
	BundleTransactionHash string `json:"bundleTransactionHash,omitempty" bson:"bundleTransactionHash,omitempty"`
	EntityUploadTimestamp int64  `json:"entityUploadTimestamp,omitempty" bson:"entityUploadTimestamp,omitempty"`
}

// Event is a timestamped observation attached to an asset.
type Event struct {
	EventID  string        `json:"eventId" bson:"eventId"`
	Content  EventContent  `json:"content" bson:"content"`
	Metadata EventMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// HasData reports whether the event currently carries its data payload
// (false on a redacted copy).
func (e *Event) HasData() bool {
	return e.Content.Data != nil
}

// BundleIDData is the signed identity payload of a Bundle.
type BundleIDData struct {
	CreatedBy   string `json:"createdBy" bson:"createdBy"`
	Timestamp   int64  `json:"timestamp" bson:"timestamp"`
	EntriesHash string `json:"entriesHash" bson:"entriesHash"`
}

// BundleEntry is one member of a bundle's entries set: either an Asset or
// a redacted Event, discriminated by which pointer is non-nil so entries
// marshal back to exactly the asset/event shape (no wrapper object).
type BundleEntry struct {
	Asset *Asset `json:"-"`
	Event *Event `json:"-"`
}

// ID returns the entry's asset or event id.
func (b BundleEntry) ID() string {
	if b.Asset != nil {
		return b.Asset.AssetID
	}
	if b.Event != nil {
		return b.Event.EventID
	}
	return ""
}

// BundleContent is the hashed/signed body of a Bundle.
type BundleContent struct {
	IDData    BundleIDData  `json:"idData" bson:"idData"`
	Entries   []BundleEntry `json:"entries" bson:"entries"`
	Signature string        `json:"signature" bson:"signature"`
}

// BundleMetadata holds proof-of-commitment data, populated after the bundle
// is anchored on-chain.
type BundleMetadata struct {
	ProofBlock            int64  `json:"proofBlock,omitempty" bson:"proofBlock,omitempty"`
	BundleTransactionHash string `json:"bundleTransactionHash,omitempty" bson:"bundleTransactionHash,omitempty"`
}

// Bundle is a signed collection of assets and redacted events, committed
// on-chain.
type Bundle struct {
	BundleID string         `json:"bundleId" bson:"bundleId"`
	Content  BundleContent  `json:"content" bson:"content"`
	Metadata BundleMetadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
