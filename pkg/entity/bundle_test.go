// Copyright 2025 Certen Protocol
package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedact_BelowOrEqualLevelPassesThrough(t *testing.T) {
	e := &Event{Content: EventContent{
		IDData: EventIDData{AccessLevel: 1},
		Data:   []DataEntry{{"type": "ambrosus.asset.info"}},
	}}

	require.Same(t, e, Redact(e, 1))
	require.NotNil(t, Redact(e, 2).Content.Data)
}

func TestRedact_AboveLevelStripsData(t *testing.T) {
	e := &Event{Content: EventContent{
		IDData: EventIDData{AccessLevel: 3},
		Data:   []DataEntry{{"type": "ambrosus.asset.info"}},
	}}

	redacted := Redact(e, 1)
	require.Nil(t, redacted.Content.Data)
	require.NotNil(t, e.Content.Data, "original must be untouched")
}

func TestSetBundleAndRemoveBundle_Asset(t *testing.T) {
	a := &Asset{}
	claimed := a.SetBundle("stub-1")
	require.Equal(t, "stub-1", claimed.Metadata.BundleID)
	require.Empty(t, a.Metadata.BundleID, "original must be untouched")

	released := claimed.RemoveBundle()
	require.Empty(t, released.Metadata.BundleID)
}

func TestSetBundleAndRemoveBundle_Event(t *testing.T) {
	e := &Event{}
	claimed := e.SetBundle("stub-2")
	require.Equal(t, "stub-2", claimed.Metadata.BundleID)

	released := claimed.RemoveBundle()
	require.Empty(t, released.Metadata.BundleID)
}
