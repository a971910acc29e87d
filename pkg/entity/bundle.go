// Copyright 2025 Certen Protocol
//
// Bundle assembly and the redaction/bundle-tag helpers shared by the
// ingress path and the read path.
package entity

import (
	"crypto/ecdsa"
	"fmt"
)

// Redact returns a copy of e with content.data stripped iff the event's
// accessLevel exceeds requesterLevel. This is the single predicate used
// both on read (pkg/repository) and on bundle assembly (assembleBundle
// below) — the spec requires the two call sites produce identical shapes
// for the same (event, requesterLevel) pair.
func Redact(e *Event, requesterLevel int) *Event {
	if e.Content.IDData.AccessLevel <= requesterLevel {
		return e
	}
	cp := *e
	cp.Content.Data = nil
	return &cp
}

// prepareEventForBundlePublication strips content.data iff accessLevel > 0,
// i.e. redaction against a requester level of zero — the level a bundle's
// public entries are readable at.
func prepareEventForBundlePublication(e *Event) *Event {
	return Redact(e, 0)
}

// SetBundle returns a copy of a with metadata.bundleId set.
func (a *Asset) SetBundle(bundleID string) *Asset {
	cp := *a
	cp.Metadata.BundleID = bundleID
	return &cp
}

// RemoveBundle returns a copy of a with metadata.bundleId cleared. It is
// the exact inverse of SetBundle applied to an asset previously free of a
// bundleId: other metadata fields are preserved untouched.
func (a *Asset) RemoveBundle() *Asset {
	cp := *a
	cp.Metadata.BundleID = ""
	return &cp
}

func (e *Event) SetBundle(bundleID string) *Event {
	cp := *e
	cp.Metadata.BundleID = bundleID
	return &cp
}

// RemoveBundle returns a copy of e with metadata.bundleId cleared.
func (e *Event) RemoveBundle() *Event {
	cp := *e
	cp.Metadata.BundleID = ""
	return &cp
}

// SetEntityUploadTimestamp stamps metadata.entityUploadTimestamp = now (in
// seconds) on a copy of e.
func (e *Event) SetEntityUploadTimestamp(now int64) *Event {
	cp := *e
	cp.Metadata.EntityUploadTimestamp = now
	return &cp
}

// AssembleBundle composes a bundle from a set of claimed assets and
// events: it strips any in-progress bundleId tag, redacts event data per
// accessLevel, computes entriesHash, and signs the result.
func (v *Validator) AssembleBundle(assets []*Asset, events []*Event, timestamp int64, secret *ecdsa.PrivateKey) (*Bundle, error) {
	entries := make([]BundleEntry, 0, len(assets)+len(events))
	for _, a := range assets {
		entries = append(entries, BundleEntry{Asset: a.RemoveBundle()})
	}
	for _, e := range events {
		stripped := e.RemoveBundle()
		entries = append(entries, BundleEntry{Event: prepareEventForBundlePublication(stripped)})
	}

	entriesHash, err := v.signer.CalculateHash(entries)
	if err != nil {
		return nil, fmt.Errorf("assemble bundle: hash entries: %w", err)
	}

	createdBy := v.signer.AddressFromSecret(secret)
	idData := BundleIDData{
		CreatedBy:   createdBy,
		Timestamp:   timestamp,
		EntriesHash: entriesHash,
	}

	signature, err := v.signer.Sign(secret, idData)
	if err != nil {
		return nil, fmt.Errorf("assemble bundle: sign: %w", err)
	}

	content := BundleContent{
		IDData:    idData,
		Entries:   entries,
		Signature: signature,
	}

	bundleID, err := v.signer.CalculateHash(content)
	if err != nil {
		return nil, fmt.Errorf("assemble bundle: hash content: %w", err)
	}

	return &Bundle{BundleID: bundleID, Content: content}, nil
}
