// Package schema validates and normalizes loosely typed document data.
//
// It covers two needs of simulation documents. Map-shaped input, as decoded
// from YAML or JSON, is checked against a Schema of field types, and physical
// quantities written as strings are converted to canonical units:
//
//	s := schema.Schema{
//	    "count":            schema.Int(),
//	    "spectral_width":   schema.Frequency(),
//	    "reference_offset": schema.Optional(schema.Frequency()),
//	}
//
//	data, err := schema.Normalize(s, map[string]any{
//	    "count":          2048,
//	    "spectral_width": "25 kHz",
//	})
//	// data["spectral_width"] == 25000.0
//
// A unit of the wrong dimension ("10 ppm" for a frequency) yields an error
// matching ErrUnitMismatch.
//
// Typed models are checked through ValidateStruct, which reads `validate`
// struct tags and reports failures with the same ValidationError and
// AggregateError types.
package schema
