// Copyright 2025 Certen Protocol
//
// Event query predicate composition. The conjunct order is fixed (§4.2) so
// the composed filter's shape is stable and testable: access level first,
// then data element-match predicates, then the geospatial predicate, then
// the remaining scalar predicates.
package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/identity"
)

// buildEventFilter composes the conjunctive $and filter for FindEvents.
// The access-level bound is always present and is never duplicated even
// if a caller's params happened to also constrain accessLevel directly
// (FindEventsParams has no accessLevel field, so the bound is appended
// exactly once per call).
func buildEventFilter(p *entity.FindEventsParams, accessLevel int) bson.D {
	var and bson.A

	and = append(and, bson.D{{Key: "content.idData.accessLevel", Value: bson.D{{Key: "$lte", Value: accessLevel}}}})

	for _, k := range identity.SortedKeys(p.Data) {
		v := p.Data[k]
		and = append(and, bson.D{{Key: "content.data", Value: bson.D{
			{Key: "$elemMatch", Value: bson.D{{Key: k, Value: v}}},
		}}})
	}

	if p.Geo != nil {
		// Legacy coordinate-pair $near, matching the "2d" index over the
		// stored {lon, lat} embedded document (see EnsureIndexes): no
		// $geometry/GeoJSON wrapping, since the data was never stored as one.
		and = append(and, bson.D{{Key: "content.data.geoJson", Value: bson.D{
			{Key: "$near", Value: bson.A{p.Geo.LocationLongitude, p.Geo.LocationLatitude}},
			{Key: "$maxDistance", Value: p.Geo.LocationMaxDistance},
		}}})
	}

	if p.AssetID != "" {
		and = append(and, bson.D{{Key: "content.idData.assetId", Value: p.AssetID}})
	}
	if p.CreatedBy != "" {
		and = append(and, bson.D{{Key: "content.idData.createdBy", Value: p.CreatedBy}})
	}
	if p.FromTimestamp != nil {
		and = append(and, bson.D{{Key: "content.idData.timestamp", Value: bson.D{{Key: "$gte", Value: *p.FromTimestamp}}}})
	}
	if p.ToTimestamp != nil {
		and = append(and, bson.D{{Key: "content.idData.timestamp", Value: bson.D{{Key: "$lte", Value: *p.ToTimestamp}}}})
	}

	return bson.D{{Key: "$and", Value: and}}
}
