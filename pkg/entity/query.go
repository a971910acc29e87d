// Copyright 2025 Certen Protocol
//
// Query-parameter validation and casting for findAssets/findEvents.
package entity

import (
	"regexp"
	"strconv"
)

var createdByPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

const (
	minPerPage = 1
	maxPerPage = 1000
)

// FindAssetsParams is the validated, cast parameter set for an asset query.
type FindAssetsParams struct {
	CreatedBy      string
	Page           int
	PerPage        int
	FromTimestamp  *int64
	ToTimestamp    *int64
}

// GeoQuery is the validated shape of the reserved "geoJson" query key.
type GeoQuery struct {
	LocationLongitude float64
	LocationLatitude  float64
	LocationMaxDistance float64
}

// FindEventsParams is the validated, cast parameter set for an event query.
type FindEventsParams struct {
	AssetID       string
	CreatedBy     string
	Page          int
	PerPage       int
	FromTimestamp *int64
	ToTimestamp   *int64
	Data          map[string]interface{} // scalar values only, "geoJson" excluded
	Geo           *GeoQuery
}

var assetParamKeys = map[string]bool{
	"createdBy": true, "page": true, "perPage": true,
	"fromTimestamp": true, "toTimestamp": true,
}

var eventParamKeys = map[string]bool{
	"assetId": true, "createdBy": true, "page": true, "perPage": true,
	"fromTimestamp": true, "toTimestamp": true, "data": true,
}

// ValidateAndCastFindAssetsParams validates and casts a raw string-keyed
// parameter mapping (as would arrive from a query string) into
// FindAssetsParams.
func ValidateAndCastFindAssetsParams(params map[string]string) (*FindAssetsParams, error) {
	for k := range params {
		if !assetParamKeys[k] {
			return nil, NewValidationError("unknown query parameter %q", k)
		}
	}

	out := &FindAssetsParams{Page: 0, PerPage: 100}

	if v, ok := params["createdBy"]; ok {
		if !createdByPattern.MatchString(v) {
			return nil, NewValidationError("createdBy must be a 20-byte hex address")
		}
		out.CreatedBy = v
	}

	if err := castPage(params, &out.Page, &out.PerPage); err != nil {
		return nil, err
	}

	ft, err := castNonNegativeInt(params, "fromTimestamp")
	if err != nil {
		return nil, err
	}
	out.FromTimestamp = ft

	tt, err := castNonNegativeInt(params, "toTimestamp")
	if err != nil {
		return nil, err
	}
	out.ToTimestamp = tt

	return out, nil
}

// ValidateAndCastFindEventsParams validates and casts a raw parameter
// mapping for an event query. data carries scalar-valued element-match
// predicates plus, under the reserved "geoJson" key, a geospatial
// predicate; object/array literals anywhere else under data are rejected.
func ValidateAndCastFindEventsParams(params map[string]interface{}) (*FindEventsParams, error) {
	for k := range params {
		if !eventParamKeys[k] {
			return nil, NewValidationError("unknown query parameter %q", k)
		}
	}

	out := &FindEventsParams{Page: 0, PerPage: 100}

	if v, ok := params["assetId"]; ok {
		s, err := castScalarToString(v, "assetId")
		if err != nil {
			return nil, err
		}
		out.AssetID = s
	}

	if v, ok := params["createdBy"]; ok {
		s, err := castScalarToString(v, "createdBy")
		if err != nil {
			return nil, err
		}
		if !createdByPattern.MatchString(s) {
			return nil, NewValidationError("createdBy must be a 20-byte hex address")
		}
		out.CreatedBy = s
	}

	page, perPage, err := castPageInterface(params)
	if err != nil {
		return nil, err
	}
	out.Page, out.PerPage = page, perPage

	ft, err := castNonNegativeIntInterface(params, "fromTimestamp")
	if err != nil {
		return nil, err
	}
	out.FromTimestamp = ft

	tt, err := castNonNegativeIntInterface(params, "toTimestamp")
	if err != nil {
		return nil, err
	}
	out.ToTimestamp = tt

	if rawData, ok := params["data"]; ok {
		dataMap, ok := rawData.(map[string]interface{})
		if !ok {
			return nil, NewValidationError("data must be an object")
		}
		data := make(map[string]interface{})
		for k, v := range dataMap {
			if k == "geoJson" {
				geo, err := castGeoQuery(v)
				if err != nil {
					return nil, err
				}
				out.Geo = geo
				continue
			}
			if !isScalar(v) {
				return nil, NewValidationError("data.%s must be a scalar value", k)
			}
			data[k] = v
		}
		out.Data = data
	}

	return out, nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, float64, int, int64:
		return true
	default:
		return false
	}
}

func castGeoQuery(v interface{}) (*GeoQuery, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, NewValidationError("geoJson must be an object with locationLongitude/locationLatitude/locationMaxDistance")
	}
	for k := range m {
		if k != "locationLongitude" && k != "locationLatitude" && k != "locationMaxDistance" {
			return nil, NewValidationError("unknown geoJson field %q", k)
		}
	}
	lon, err := requireFloat(m, "locationLongitude")
	if err != nil {
		return nil, err
	}
	lat, err := requireFloat(m, "locationLatitude")
	if err != nil {
		return nil, err
	}
	dist, err := requireFloat(m, "locationMaxDistance")
	if err != nil {
		return nil, err
	}
	return &GeoQuery{LocationLongitude: lon, LocationLatitude: lat, LocationMaxDistance: dist}, nil
}

func requireFloat(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, NewValidationError("geoJson.%s is required", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, NewValidationError("geoJson.%s must be a number", key)
	}
}

func castScalarToString(v interface{}, field string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", NewValidationError("%s must be a string", field)
	}
	return s, nil
}

// castPage validates and fills page/perPage from string-valued params.
func castPage(params map[string]string, page, perPage *int) error {
	if v, ok := params["page"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return NewValidationError("page must be a non-negative integer")
		}
		*page = n
	}
	*perPage = 100
	if v, ok := params["perPage"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < minPerPage || n > maxPerPage {
			return NewValidationError("perPage must be between %d and %d", minPerPage, maxPerPage)
		}
		*perPage = n
	}
	return nil
}

func castNonNegativeInt(params map[string]string, key string) (*int64, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, NewValidationError("%s must be a non-negative integer", key)
	}
	return &n, nil
}

// castPageInterface mirrors castPage but over interface{}-valued params:
// the source may hand page/perPage as either a JSON number or a numeric
// string (Open Question (b) in §9 — the dual-mode behavior is preserved,
// but a non-numeric string is rejected outright rather than silently
// defaulted).
func castPageInterface(params map[string]interface{}) (int, int, error) {
	page := 0
	perPage := 100

	if v, ok := params["page"]; ok {
		n, err := castIntLoose(v)
		if err != nil || n < 0 {
			return 0, 0, NewValidationError("page must be a non-negative integer")
		}
		page = int(n)
	}

	if v, ok := params["perPage"]; ok {
		n, err := castIntLoose(v)
		if err != nil || n < minPerPage || n > maxPerPage {
			return 0, 0, NewValidationError("perPage must be between %d and %d", minPerPage, maxPerPage)
		}
		perPage = int(n)
	}

	return page, perPage, nil
}

func castNonNegativeIntInterface(params map[string]interface{}, key string) (*int64, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	n, err := castIntLoose(v)
	if err != nil || n < 0 {
		return nil, NewValidationError("%s must be a non-negative integer", key)
	}
	return &n, nil
}

// castIntLoose accepts a JSON number directly, or a numeric string (cast
// explicitly); any other string is rejected rather than silently coerced.
func castIntLoose(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, NewValidationError("expected a number or numeric string")
	}
}
