// Copyright 2025 Certen Protocol
//
// BundleEntry marshals/unmarshals as a bare Asset or Event document (no
// wrapper), so content.entries round-trips through hashing and through the
// document store exactly as the spec's entry shape requires.
package entity

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// entryDiscriminator is the minimal shape used to tell an asset apart from
// an event: assets carry assetId at the root, events carry eventId.
type entryDiscriminator struct {
	AssetID string `json:"assetId" bson:"assetId"`
	EventID string `json:"eventId" bson:"eventId"`
}

func (b BundleEntry) MarshalJSON() ([]byte, error) {
	if b.Asset != nil {
		return json.Marshal(b.Asset)
	}
	if b.Event != nil {
		return json.Marshal(b.Event)
	}
	return nil, fmt.Errorf("bundle entry: neither asset nor event set")
}

func (b *BundleEntry) UnmarshalJSON(data []byte) error {
	var disc entryDiscriminator
	if err := json.Unmarshal(data, &disc); err != nil {
		return err
	}
	switch {
	case disc.AssetID != "":
		var a Asset
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		b.Asset = &a
	case disc.EventID != "":
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		b.Event = &e
	default:
		return fmt.Errorf("bundle entry: document has neither assetId nor eventId")
	}
	return nil
}

func (b BundleEntry) MarshalBSON() ([]byte, error) {
	if b.Asset != nil {
		return bson.Marshal(b.Asset)
	}
	if b.Event != nil {
		return bson.Marshal(b.Event)
	}
	return nil, fmt.Errorf("bundle entry: neither asset nor event set")
}

func (b *BundleEntry) UnmarshalBSON(data []byte) error {
	var disc entryDiscriminator
	if err := bson.Unmarshal(data, &disc); err != nil {
		return err
	}
	switch {
	case disc.AssetID != "":
		var a Asset
		if err := bson.Unmarshal(data, &a); err != nil {
			return err
		}
		b.Asset = &a
	case disc.EventID != "":
		var e Event
		if err := bson.Unmarshal(data, &e); err != nil {
			return err
		}
		b.Event = &e
	default:
		return fmt.Errorf("bundle entry: document has neither assetId nor eventId")
	}
	return nil
}
