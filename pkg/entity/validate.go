// Copyright 2025 Certen Protocol
//
// Entity Builder / Validator (C2): canonical shape whitelist, hash and
// signature invariants, and the query-parameter validation gating every
// ingress and query request. Validation order is fixed and stable —
// shape, then hash, then signature, then timestamp — because callers rely
// on the first-failure class.
package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaultledger/node/pkg/entity/schema"
	"github.com/vaultledger/node/pkg/identity"
)

const defaultTimestampLimit = 24 * 60 * 60 // one day, in seconds

// Validator holds the validator's immutable configuration: no mutable
// state is ever touched by its exported operations.
type Validator struct {
	timestampLimit int64
	schemas        *schema.Registry
	signer         identity.Signer
	now            func() int64
}

// Option configures a Validator at construction time.
type Option func(*Validator)

// WithTimestampLimit overrides the default one-day ingress timestamp
// tolerance.
func WithTimestampLimit(seconds int64) Option {
	return func(v *Validator) { v.timestampLimit = seconds }
}

// WithClock overrides the validator's notion of "now", for deterministic
// tests.
func WithClock(now func() int64) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a Validator. schemas and signer must be non-nil.
func New(schemas *schema.Registry, signer identity.Signer, opts ...Option) *Validator {
	v := &Validator{
		timestampLimit: defaultTimestampLimit,
		schemas:        schemas,
		signer:         signer,
		now:            func() int64 { return time.Now().Unix() },
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func toMap(raw []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, NewValidationError("malformed JSON: %v", err)
	}
	return m, nil
}

func requireSubsetKeys(obj map[string]interface{}, allowed ...string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = true
	}
	for k := range obj {
		if !allowedSet[k] {
			return NewValidationError("unknown field %q", k)
		}
	}
	return nil
}

func asObject(obj map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := obj[key]
	if !ok {
		return nil, NewValidationError("missing required field %q", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, NewValidationError("field %q must be an object", key)
	}
	return m, nil
}

func requirePresent(obj map[string]interface{}, keys ...string) error {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return NewValidationError("missing required field %q", k)
		}
	}
	return nil
}

// isTimestampWithinLimit reports whether ts is within ±timestampLimit
// seconds of the validator's notion of now.
func (v *Validator) isTimestampWithinLimit(ts int64) bool {
	now := v.now()
	delta := ts - now
	if delta < 0 {
		delta = -delta
	}
	return delta <= v.timestampLimit
}

// ValidateAsset checks raw (a caller-supplied JSON document) against all of
// §3's asset invariants and returns the parsed Asset on success.
func (v *Validator) ValidateAsset(raw []byte) (*Asset, error) {
	m, err := toMap(raw)
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(m, "assetId", "content"); err != nil {
		return nil, err
	}
	if err := requirePresent(m, "assetId", "content"); err != nil {
		return nil, err
	}
	content, err := asObject(m, "content")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(content, "idData", "signature"); err != nil {
		return nil, err
	}
	idData, err := asObject(content, "idData")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(idData, "createdBy", "timestamp", "sequenceNumber"); err != nil {
		return nil, err
	}
	if err := requirePresent(idData, "createdBy", "timestamp", "sequenceNumber"); err != nil {
		return nil, err
	}
	if err := requirePresent(content, "signature"); err != nil {
		return nil, err
	}

	var a Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, NewValidationError("malformed asset: %v", err)
	}

	matches, err := v.signer.CheckHashMatches(a.AssetID, a.Content)
	if err != nil {
		return nil, NewValidationError("hash check failed: %v", err)
	}
	if !matches {
		return nil, NewValidationError("assetId does not match H(content)")
	}

	if err := v.signer.ValidateSignature(a.Content.IDData.CreatedBy, a.Content.Signature, a.Content.IDData); err != nil {
		return nil, NewValidationError("signature invalid: %v", err)
	}

	if !v.isTimestampWithinLimit(a.Content.IDData.Timestamp) {
		return nil, NewValidationError("timestamp %d outside ±%ds of now", a.Content.IDData.Timestamp, v.timestampLimit)
	}

	return &a, nil
}

// ValidateEvent checks raw against §3's event invariants, including
// per-entry schema validation via the type registry.
func (v *Validator) ValidateEvent(raw []byte) (*Event, error) {
	m, err := toMap(raw)
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(m, "eventId", "content"); err != nil {
		return nil, err
	}
	if err := requirePresent(m, "eventId", "content"); err != nil {
		return nil, err
	}
	content, err := asObject(m, "content")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(content, "idData", "signature", "data"); err != nil {
		return nil, err
	}
	idData, err := asObject(content, "idData")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(idData, "assetId", "createdBy", "timestamp", "dataHash", "accessLevel"); err != nil {
		return nil, err
	}
	if err := requirePresent(idData, "assetId", "createdBy", "timestamp", "dataHash", "accessLevel"); err != nil {
		return nil, err
	}
	if err := requirePresent(content, "signature"); err != nil {
		return nil, err
	}
	if ts, ok := idData["timestamp"].(float64); !ok || ts < 0 || ts != float64(int64(ts)) {
		return nil, NewValidationError("timestamp must be a non-negative integer")
	}
	if al, ok := idData["accessLevel"].(float64); !ok || al < 0 || al != float64(int64(al)) {
		return nil, NewValidationError("accessLevel must be a non-negative integer")
	}

	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, NewValidationError("malformed event: %v", err)
	}

	matches, err := v.signer.CheckHashMatches(e.EventID, e.Content)
	if err != nil {
		return nil, NewValidationError("hash check failed: %v", err)
	}
	if !matches {
		return nil, NewValidationError("eventId does not match H(content)")
	}

	if e.Content.Data != nil {
		dataMatches, err := v.signer.CheckHashMatches(e.Content.IDData.DataHash, e.Content.Data)
		if err != nil {
			return nil, NewValidationError("data hash check failed: %v", err)
		}
		if !dataMatches {
			return nil, NewValidationError("dataHash does not match H(content.data)")
		}
		if fieldErrs := v.validateDataEntries(e.Content.Data); len(fieldErrs) > 0 {
			return nil, &JsonValidationError{Errors: fieldErrs}
		}
	}

	if err := v.signer.ValidateSignature(e.Content.IDData.CreatedBy, e.Content.Signature, e.Content.IDData); err != nil {
		return nil, NewValidationError("signature invalid: %v", err)
	}

	if !v.isTimestampWithinLimit(e.Content.IDData.Timestamp) {
		return nil, NewValidationError("timestamp %d outside ±%ds of now", e.Content.IDData.Timestamp, v.timestampLimit)
	}

	return &e, nil
}

func (v *Validator) validateDataEntries(entries []DataEntry) []FieldError {
	var out []FieldError
	for i, entry := range entries {
		for _, fe := range v.schemas.Validate(entry) {
			out = append(out, FieldError{DataPath: fmt.Sprintf("$.data[%d]%s", i, fe.DataPath[1:]), Message: fe.Message})
		}
	}
	return out
}

// ValidateBundle checks raw against §3's bundle invariants.
func (v *Validator) ValidateBundle(raw []byte) (*Bundle, error) {
	m, err := toMap(raw)
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(m, "bundleId", "content", "metadata"); err != nil {
		return nil, err
	}
	if err := requirePresent(m, "bundleId", "content"); err != nil {
		return nil, err
	}
	content, err := asObject(m, "content")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(content, "idData", "signature", "entries"); err != nil {
		return nil, err
	}
	idData, err := asObject(content, "idData")
	if err != nil {
		return nil, err
	}
	if err := requireSubsetKeys(idData, "createdBy", "timestamp", "entriesHash"); err != nil {
		return nil, err
	}
	if err := requirePresent(idData, "createdBy", "timestamp", "entriesHash"); err != nil {
		return nil, err
	}
	if err := requirePresent(content, "signature", "entries"); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, NewValidationError("malformed bundle: %v", err)
	}

	idMatches, err := v.signer.CheckHashMatches(b.BundleID, b.Content)
	if err != nil {
		return nil, NewValidationError("hash check failed: %v", err)
	}
	if !idMatches {
		return nil, NewValidationError("bundleId does not match H(content)")
	}

	entriesMatch, err := v.signer.CheckHashMatches(b.Content.IDData.EntriesHash, b.Content.Entries)
	if err != nil {
		return nil, NewValidationError("entries hash check failed: %v", err)
	}
	if !entriesMatch {
		return nil, NewValidationError("entriesHash does not match H(content.entries)")
	}

	for _, e := range b.Content.Entries {
		if e.Event != nil && e.Event.Content.IDData.AccessLevel > 0 && e.Event.HasData() {
			return nil, NewValidationError("event %s has accessLevel %d but retains content.data in bundle", e.Event.EventID, e.Event.Content.IDData.AccessLevel)
		}
	}

	if err := v.signer.ValidateSignature(b.Content.IDData.CreatedBy, b.Content.Signature, b.Content.IDData); err != nil {
		return nil, NewValidationError("signature invalid: %v", err)
	}

	return &b, nil
}
