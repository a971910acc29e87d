// Copyright 2025 Certen Protocol
//
// Type-schema registry: type schemas are declarative data, not code. Adding
// a new ambrosus.* type means registering a Schema value, never touching
// the traverser below.
package schema

import (
	"fmt"
	"regexp"
)

// Kind is the primitive shape a field's value must take.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindObject
	KindGeoPoint
)

// Field describes one allowed field of a registered entry type.
type Field struct {
	Required bool
	Kind     Kind
	Pattern  *regexp.Regexp // only consulted for KindString
	Nested   map[string]Field
}

// Schema is the declarative shape of one ambrosus.* entry type.
type Schema struct {
	Type   string
	Fields map[string]Field
}

// FieldError is one structured schema failure, mirroring the entity
// package's error shape (duplicated here to avoid an import cycle; the
// validator package adapts it into entity.FieldError).
type FieldError struct {
	DataPath string
	Message  string
}

var hex32 = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Registry holds the live set of registered type schemas. It is safe for
// concurrent read access once registration (e.g. Predefined) has completed;
// registration itself is not synchronized and is expected to happen only
// at process startup.
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds or replaces the schema for s.Type.
func (r *Registry) Register(s Schema) {
	r.schemas[s.Type] = s
}

// Lookup returns the schema registered for typ, if any.
func (r *Registry) Lookup(typ string) (Schema, bool) {
	s, ok := r.schemas[typ]
	return s, ok
}

// Validate checks entry (a decoded JSON object) against the schema
// registered for entry["type"], if one is registered. Entries whose type
// is not registered are permitted (the outer schema already enforces the
// shared shape: "type" is a required string).
func (r *Registry) Validate(entry map[string]interface{}) []FieldError {
	typ, ok := entry["type"].(string)
	if !ok || typ == "" {
		return []FieldError{{DataPath: "$.type", Message: "type is required and must be a non-empty string"}}
	}

	s, registered := r.Lookup(typ)
	if !registered {
		return nil
	}

	return validateFields("$", entry, s.Fields)
}

func validateFields(path string, obj map[string]interface{}, fields map[string]Field) []FieldError {
	var errs []FieldError

	for name, f := range fields {
		fieldPath := fmt.Sprintf("%s.%s", path, name)
		v, present := obj[name]
		if !present {
			if f.Required {
				errs = append(errs, FieldError{DataPath: fieldPath, Message: fmt.Sprintf("%s is required", name)})
			}
			continue
		}
		errs = append(errs, validateField(fieldPath, v, f)...)
	}

	for name := range obj {
		if name == "type" {
			continue
		}
		if _, known := fields[name]; !known {
			errs = append(errs, FieldError{DataPath: fmt.Sprintf("%s.%s", path, name), Message: fmt.Sprintf("unknown field %s", name)})
		}
	}

	return errs
}

func validateField(path string, v interface{}, f Field) []FieldError {
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return []FieldError{{DataPath: path, Message: "must be a string"}}
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			return []FieldError{{DataPath: path, Message: fmt.Sprintf("must match %s", f.Pattern.String())}}
		}
		return nil
	case KindNumber:
		switch v.(type) {
		case float64, int, int64:
			return nil
		default:
			return []FieldError{{DataPath: path, Message: "must be a number"}}
		}
	case KindObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return []FieldError{{DataPath: path, Message: "must be an object"}}
		}
		return validateFields(path, obj, f.Nested)
	case KindGeoPoint:
		return validateGeoPoint(path, v)
	default:
		return nil
	}
}

func validateGeoPoint(path string, v interface{}) []FieldError {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return []FieldError{{DataPath: path, Message: "must be an object with lon/lat"}}
	}
	lon, lonOK := numberField(obj, "lon")
	lat, latOK := numberField(obj, "lat")
	if !lonOK || !latOK {
		return []FieldError{{DataPath: path, Message: "geo point requires numeric lon and lat"}}
	}
	var errs []FieldError
	if lon < -180 || lon > 180 {
		errs = append(errs, FieldError{DataPath: path + ".lon", Message: "must be within [-180, 180]"})
	}
	if lat < -90 || lat > 90 {
		errs = append(errs, FieldError{DataPath: path + ".lat", Message: "must be within [-90, 90]"})
	}
	return errs
}

func numberField(obj map[string]interface{}, name string) (float64, bool) {
	v, ok := obj[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Hex32Pattern matches a 0x-prefixed 32-byte hex string, as used by
// assetId/eventId/bundleId fields referenced from event data entries.
func Hex32Pattern() *regexp.Regexp { return hex32 }
