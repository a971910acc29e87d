// Copyright 2025 Certen Protocol
package entity

import (
	"crypto/ecdsa"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/vaultledger/node/pkg/entity/schema"
	"github.com/vaultledger/node/pkg/identity"
)

func testValidator(t *testing.T, now int64) *Validator {
	t.Helper()
	return New(schema.Predefined(), identity.Default, WithClock(func() int64 { return now }))
}

func buildAsset(t *testing.T, secret *ecdsa.PrivateKey, createdBy string, timestamp, seq int64) []byte {
	t.Helper()
	idData := AssetIDData{CreatedBy: createdBy, Timestamp: timestamp, SequenceNumber: seq}
	sig, err := identity.Default.Sign(secret, idData)
	require.NoError(t, err)

	content := AssetContent{IDData: idData, Signature: sig}
	assetID, err := identity.Default.CalculateHash(content)
	require.NoError(t, err)

	raw, err := json.Marshal(Asset{AssetID: assetID, Content: content})
	require.NoError(t, err)
	return raw
}

func buildEvent(t *testing.T, secret *ecdsa.PrivateKey, createdBy, assetID string, timestamp int64, accessLevel int, data []DataEntry) []byte {
	t.Helper()
	var dataHash string
	if data != nil {
		h, err := identity.Default.CalculateHash(data)
		require.NoError(t, err)
		dataHash = h
	}

	idData := EventIDData{
		AssetID:     assetID,
		CreatedBy:   createdBy,
		Timestamp:   timestamp,
		DataHash:    dataHash,
		AccessLevel: accessLevel,
	}
	sig, err := identity.Default.Sign(secret, idData)
	require.NoError(t, err)

	content := EventContent{IDData: idData, Data: data, Signature: sig}
	eventID, err := identity.Default.CalculateHash(content)
	require.NoError(t, err)

	raw, err := json.Marshal(Event{EventID: eventID, Content: content})
	require.NoError(t, err)
	return raw
}

func TestValidateAsset_Success(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	raw := buildAsset(t, secret, address, 1000, 0)

	asset, err := v.ValidateAsset(raw)
	require.NoError(t, err)
	require.Equal(t, address, asset.Content.IDData.CreatedBy)
}

func TestValidateAsset_TimestampOutsideLimit(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	raw := buildAsset(t, secret, address, 1000-int64(defaultTimestampLimit)-100, 0)

	_, err = v.ValidateAsset(raw)
	require.Error(t, err)
}

func TestValidateAsset_UnknownField(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	raw := buildAsset(t, secret, address, 1000, 0)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	m["unexpectedField"] = "surprise"
	tampered, err := json.Marshal(m)
	require.NoError(t, err)

	_, err = v.ValidateAsset(tampered)
	require.Error(t, err)
}

func TestValidateAsset_TamperedContentFailsHash(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	raw := buildAsset(t, secret, address, 1000, 0)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	content := m["content"].(map[string]interface{})
	idData := content["idData"].(map[string]interface{})
	idData["sequenceNumber"] = float64(999)
	tampered, err := json.Marshal(m)
	require.NoError(t, err)

	_, err = v.ValidateAsset(tampered)
	require.Error(t, err)
}

func TestValidateEvent_SuccessWithData(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	data := []DataEntry{{"type": "ambrosus.asset.info", "name": "widget"}}
	raw := buildEvent(t, secret, address, "0x"+pad64("assetid"), 1000, 0, data)

	event, err := v.ValidateEvent(raw)
	require.NoError(t, err)
	require.True(t, event.HasData())
}

func TestValidateEvent_UnknownSchemaField(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	data := []DataEntry{{"type": "ambrosus.asset.info", "name": "widget", "bogus": true}}
	raw := buildEvent(t, secret, address, "0x"+pad64("assetid"), 1000, 0, data)

	_, err = v.ValidateEvent(raw)
	require.Error(t, err)
	var jve *JsonValidationError
	require.ErrorAs(t, err, &jve)
}

func TestValidateEvent_GeoJSONOutOfRangeCoordinate(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	data := []DataEntry{{
		"type":    "ambrosus.event.location",
		"assetId": "0x" + pad64("a"),
		"geoJson": map[string]interface{}{"lon": 9999.0, "lat": 9999.0},
	}}
	raw := buildEvent(t, secret, address, "0x"+pad64("assetid"), 1000, 0, data)

	_, err = v.ValidateEvent(raw)
	require.Error(t, err)
	var jve *JsonValidationError
	require.ErrorAs(t, err, &jve)
}

func TestValidateBundle_RejectsUnRedactedPrivateEvent(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)
	data := []DataEntry{{"type": "ambrosus.asset.info", "name": "widget"}}
	event := Event{
		EventID: "0x" + pad64("eventid"),
		Content: EventContent{
			IDData: EventIDData{AssetID: "0x" + pad64("a"), CreatedBy: address, Timestamp: 1000, AccessLevel: 2, DataHash: "0x" + pad64("h")},
			Data:   data,
		},
	}

	entries := []BundleEntry{{Event: &event}}
	entriesHash, err := identity.Default.CalculateHash(entries)
	require.NoError(t, err)
	idData := BundleIDData{CreatedBy: address, Timestamp: 1000, EntriesHash: entriesHash}
	sig, err := identity.Default.Sign(secret, idData)
	require.NoError(t, err)
	content := BundleContent{IDData: idData, Entries: entries, Signature: sig}
	bundleID, err := identity.Default.CalculateHash(content)
	require.NoError(t, err)

	raw, err := json.Marshal(Bundle{BundleID: bundleID, Content: content})
	require.NoError(t, err)

	_, err = v.ValidateBundle(raw)
	require.Error(t, err)
}

func TestAssembleAndValidateBundle_RoundTrip(t *testing.T) {
	secret, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := identity.Default.AddressFromSecret(secret)

	v := testValidator(t, 1000)

	assetRaw := buildAsset(t, secret, address, 1000, 0)
	asset, err := v.ValidateAsset(assetRaw)
	require.NoError(t, err)

	eventRaw := buildEvent(t, secret, address, asset.AssetID, 1000, 1, []DataEntry{{"type": "ambrosus.asset.info", "name": "widget"}})
	event, err := v.ValidateEvent(eventRaw)
	require.NoError(t, err)
	claimedEvent := event.SetBundle("stub-1")

	bundle, err := v.AssembleBundle([]*Asset{asset.SetBundle("stub-1")}, []*Event{claimedEvent}, 2000, secret)
	require.NoError(t, err)

	raw, err := json.Marshal(bundle)
	require.NoError(t, err)

	validated, err := v.ValidateBundle(raw)
	require.NoError(t, err)
	require.Len(t, validated.Content.Entries, 2)

	for _, e := range validated.Content.Entries {
		if e.Event != nil {
			require.False(t, e.Event.HasData(), "bundled event with accessLevel>0 must be redacted")
		}
		require.NotEmpty(t, e.ID())
	}
}

func pad64(s string) string {
	for len(s) < 64 {
		s = s + "0"
	}
	return s[:64]
}
