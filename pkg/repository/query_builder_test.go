// Copyright 2025 Certen Protocol
package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vaultledger/node/pkg/entity"
	"github.com/vaultledger/node/pkg/identity"
)

func TestBuildEventFilter_AccessLevelAlwaysFirst(t *testing.T) {
	params := &entity.FindEventsParams{}
	filter := buildEventFilter(params, 2)

	require.Len(t, filter, 1)
	require.Equal(t, "$and", filter[0].Key)

	and, ok := filter[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, and, 1)

	first := and[0].(bson.D)
	require.Equal(t, "content.idData.accessLevel", first[0].Key)
}

func TestBuildEventFilter_ConjunctOrder(t *testing.T) {
	from := int64(100)
	to := int64(200)
	params := &entity.FindEventsParams{
		AssetID:       "0xasset",
		CreatedBy:     "0xcreator",
		FromTimestamp: &from,
		ToTimestamp:   &to,
		Data:          map[string]interface{}{"zeta": "z", "alpha": "a"},
		Geo:           &entity.GeoQuery{LocationLongitude: 1.5, LocationLatitude: 2.5, LocationMaxDistance: 1000},
	}

	filter := buildEventFilter(params, 0)
	and := filter[0].Value.(bson.A)

	// accessLevel, then data keys (sorted: alpha, zeta), then geo, then
	// assetId, createdBy, fromTimestamp, toTimestamp.
	require.Len(t, and, 8)

	keyAt := func(i int) string { return and[i].(bson.D)[0].Key }
	require.Equal(t, "content.idData.accessLevel", keyAt(0))
	require.Equal(t, "content.data", keyAt(1))
	require.Equal(t, "content.data", keyAt(2))
	require.Equal(t, "content.data.geoJson", keyAt(3))
	require.Equal(t, "content.idData.assetId", keyAt(4))
	require.Equal(t, "content.idData.createdBy", keyAt(5))
	require.Equal(t, "content.idData.timestamp", keyAt(6))

	alphaMatch := and[1].(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)
	require.Equal(t, "alpha", alphaMatch[0].Key)
	require.Equal(t, "a", alphaMatch[0].Value)

	zetaMatch := and[2].(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)
	require.Equal(t, "zeta", zetaMatch[0].Key)
}

func TestBuildEventFilter_GeoNear(t *testing.T) {
	params := &entity.FindEventsParams{
		Geo: &entity.GeoQuery{LocationLongitude: 10, LocationLatitude: 20, LocationMaxDistance: 500},
	}
	filter := buildEventFilter(params, 1)
	and := filter[0].Value.(bson.A)
	require.Len(t, and, 2)

	geo := and[1].(bson.D)
	require.Equal(t, "content.data.geoJson", geo[0].Key)
	near := geo[0].Value.(bson.D)
	require.Equal(t, "$near", near[0].Key)
	coords := near[0].Value.(bson.A)
	require.Equal(t, []interface{}{float64(10), float64(20)}, []interface{}{coords[0], coords[1]})
	require.Equal(t, "$maxDistance", near[1].Key)
	require.Equal(t, float64(500), near[1].Value)
}

func TestSortedDataKeys(t *testing.T) {
	keys := identity.SortedKeys(map[string]interface{}{"z": 1, "a": 2, "m": 3})
	require.Equal(t, []string{"a", "m", "z"}, keys)
}

func TestSortedDataKeys_Empty(t *testing.T) {
	require.Empty(t, identity.SortedKeys(nil))
}
