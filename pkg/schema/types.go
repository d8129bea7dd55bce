package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the type name used in serialized schemas (e.g. "string", "frequency").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Normalizer is implemented by types that convert a raw document value into
// its canonical form, such as a quantity string into a float in base units.
type Normalizer interface {
	Normalize(value any) (any, error)
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values. Whole floats are accepted since JSON and
// YAML decoders may produce them.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	_, err := t.Normalize(value)
	return err
}

func (t *IntType) Normalize(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return int(reflect.ValueOf(v).Convert(reflect.TypeOf(0)).Int()), nil
	case float64:
		if v == float64(int64(v)) {
			return int(v), nil
		}
		return nil, fmt.Errorf("expected int, got float %g", v)
	default:
		return nil, fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates plain numeric values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	_, err := t.Normalize(value)
	return err
}

func (t *FloatType) Normalize(value any) (any, error) {
	if f, ok := toFloat(value); ok {
		return f, nil
	}
	return nil, fmt.Errorf("expected float, got %T", value)
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string { return fmt.Sprintf("[%s]", t.elemType.Name()) }

func (t *SliceType) Validate(value any) error {
	_, err := t.Normalize(value)
	return err
}

func (t *SliceType) Normalize(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = elem
		if n, ok := t.elemType.(Normalizer); ok {
			v, err := n.Normalize(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
	}
	return out, nil
}

// OptionalType allows a field to be absent or null.
type OptionalType struct {
	inner Type
}

func (t *OptionalType) Name() string { return t.inner.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.inner.Validate(value)
}

func (t *OptionalType) Normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if n, ok := t.inner.(Normalizer); ok {
		return n.Normalize(value)
	}
	return value, t.inner.Validate(value)
}

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type { return &SliceType{elemType: elemType} }

// Optional marks a field as not required.
func Optional(t Type) Type { return &OptionalType{inner: t} }

// ParseType converts a type name back to a Type.
// Supports "string", "int", "float", "bool", the quantity kinds, "[T]" and "T?".
func ParseType(typeStr string) (Type, error) {
	if n := len(typeStr); n > 1 && typeStr[n-1] == '?' {
		inner, err := ParseType(typeStr[:n-1])
		if err != nil {
			return nil, err
		}
		return Optional(inner), nil
	}
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	}
	if kind := Kind(typeStr); kind.valid() {
		return Quantity(kind), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8, int16, int32, int64:
		return float64(reflect.ValueOf(v).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), true
	default:
		return 0, false
	}
}
