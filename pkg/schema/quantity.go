package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the physical dimension of a quantity field.
type Kind string

const (
	KindFrequency           Kind = "frequency"
	KindDimensionless       Kind = "dimensionless"
	KindMagneticFluxDensity Kind = "magnetic_flux_density"
	KindAngle               Kind = "angle"
	KindPercent             Kind = "percent"
)

// Canonical returns the base unit values of this kind are normalized to.
func (k Kind) Canonical() string {
	switch k {
	case KindFrequency:
		return "Hz"
	case KindDimensionless:
		return "ppm"
	case KindMagneticFluxDensity:
		return "T"
	case KindAngle:
		return "rad"
	case KindPercent:
		return "%"
	}
	return ""
}

func (k Kind) valid() bool { return k.Canonical() != "" }

type unit struct {
	kind   Kind
	factor float64
}

var units = map[string]unit{
	"Hz":  {KindFrequency, 1},
	"kHz": {KindFrequency, 1e3},
	"MHz": {KindFrequency, 1e6},
	"GHz": {KindFrequency, 1e9},
	"ppm": {KindDimensionless, 1},
	"ppb": {KindDimensionless, 1e-3},
	"T":   {KindMagneticFluxDensity, 1},
	"mT":  {KindMagneticFluxDensity, 1e-3},
	"G":   {KindMagneticFluxDensity, 1e-4},
	"rad": {KindAngle, 1},
	"deg": {KindAngle, math.Pi / 180},
	"°":   {KindAngle, math.Pi / 180},
	"%":   {KindPercent, 1},
}

// ParseQuantity converts a number or a "<value> <unit>" string into the
// canonical unit of kind. Bare numbers are taken to be canonical already.
func ParseQuantity(value any, kind Kind) (float64, error) {
	if f, ok := toFloat(value); ok {
		return f, nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("expected number or %s quantity string, got %T", kind, value)
	}

	s = strings.TrimSpace(s)
	split := numericPrefix(s)
	magnitude, err := strconv.ParseFloat(s[:split], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	symbol := strings.TrimSpace(s[split:])
	if symbol == "" {
		return magnitude, nil
	}

	u, known := units[symbol]
	if !known {
		return 0, fmt.Errorf("unknown unit %q in %q", symbol, s)
	}
	if u.kind != kind {
		return 0, &UnitMismatchError{Want: kind, Got: u.kind, Unit: symbol}
	}
	return magnitude * u.factor, nil
}

// FormatQuantity renders a canonical value with its unit symbol.
func FormatQuantity(value float64, kind Kind) string {
	return strconv.FormatFloat(value, 'g', -1, 64) + " " + kind.Canonical()
}

// numericPrefix returns the length of the leading float literal of s.
func numericPrefix(s string) int {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '.':
		case c == '+' || c == '-':
			if i > 0 && s[i-1] != 'e' && s[i-1] != 'E' {
				return i
			}
		case c == 'e' || c == 'E':
			if i == 0 || i+1 >= len(s) || !strings.ContainsRune("0123456789+-", rune(s[i+1])) {
				return i
			}
		default:
			return i
		}
		i++
	}
	return i
}

// QuantityType validates and normalizes physical quantities of one kind.
type QuantityType struct {
	kind Kind
}

// Quantity creates a quantity type validator for kind.
func Quantity(kind Kind) Type { return &QuantityType{kind: kind} }

// Frequency creates a quantity type normalized to Hz.
func Frequency() Type { return Quantity(KindFrequency) }

// Dimensionless creates a quantity type normalized to ppm.
func Dimensionless() Type { return Quantity(KindDimensionless) }

// MagneticFluxDensity creates a quantity type normalized to tesla.
func MagneticFluxDensity() Type { return Quantity(KindMagneticFluxDensity) }

// Angle creates a quantity type normalized to radians.
func Angle() Type { return Quantity(KindAngle) }

// Percent creates a quantity type normalized to percent.
func Percent() Type { return Quantity(KindPercent) }

func (t *QuantityType) Name() string { return string(t.kind) }

// Kind returns the physical dimension of the type.
func (t *QuantityType) Kind() Kind { return t.kind }

func (t *QuantityType) Validate(value any) error {
	_, err := ParseQuantity(value, t.kind)
	return err
}

func (t *QuantityType) Normalize(value any) (any, error) {
	return ParseQuantity(value, t.kind)
}
