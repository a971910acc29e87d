// Copyright 2025 Certen Protocol
package schema

// Predefined returns a Registry pre-populated with the spec's named
// ambrosus.* types (§6).
func Predefined() *Registry {
	r := NewRegistry()

	r.Register(Schema{
		Type: "ambrosus.asset.identifiers",
		Fields: map[string]Field{
			"identifiers": {Required: true, Kind: KindObject, Nested: map[string]Field{}},
		},
	})

	r.Register(Schema{
		Type: "ambrosus.event.identifiers",
		Fields: map[string]Field{
			"identifiers": {Required: true, Kind: KindObject, Nested: map[string]Field{}},
		},
	})

	r.Register(Schema{
		Type: "ambrosus.asset.info",
		Fields: map[string]Field{
			"name":        {Kind: KindString},
			"description": {Kind: KindString},
		},
	})

	geoJSONField := Field{Kind: KindGeoPoint}

	r.Register(Schema{
		Type: "ambrosus.asset.location",
		Fields: map[string]Field{
			"geoJson": geoJSONField,
			"name":    {Kind: KindString},
			"country": {Kind: KindString},
			"city":    {Kind: KindString},
		},
	})

	r.Register(Schema{
		Type: "ambrosus.event.location",
		Fields: map[string]Field{
			"geoJson": geoJSONField,
			"assetId": {Kind: KindString, Pattern: Hex32Pattern()},
			"name":    {Kind: KindString},
			"country": {Kind: KindString},
			"city":    {Kind: KindString},
		},
	})

	return r
}
