package schema

import "sort"

// Schema is a map of field names to their expected types.
// Example: {"spectral_width": Frequency(), "count": Int(), "label": Optional(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	_, err := Normalize(schema, data)
	return err
}

// Normalize validates data and returns a copy where every value whose type
// is a Normalizer has been replaced by its canonical form. Keys absent from
// the schema are copied through untouched.
func Normalize(schema Schema, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	var errs []error
	for _, fieldName := range sortedKeys(schema) {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if _, optional := fieldType.(*OptionalType); optional {
				continue
			}
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			continue
		}
		if err := checkField(fieldName, fieldType, value, out); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "not defined in schema"})
			continue
		}
		value, fieldExists := data[fieldName]
		if !fieldExists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			continue
		}
		if err := checkField(fieldName, fieldType, value, nil); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func checkField(name string, t Type, value any, out map[string]any) error {
	if n, ok := t.(Normalizer); ok {
		v, err := n.Normalize(value)
		if err != nil {
			return &ValidationError{Key: name, Reason: err.Error(), Value: value, Err: err}
		}
		if out != nil {
			out[name] = v
		}
		return nil
	}
	if err := t.Validate(value); err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value, Err: err}
	}
	return nil
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
