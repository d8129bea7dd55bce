package postsim

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownFunction is returned for an apodization function name that is
// not supported.
var ErrUnknownFunction = errors.New("postsim: unknown apodization function")

// Function is the closed set of apodization windows.
type Function int

const (
	// Lorentzian is exp(-πΓ|t|), where Γ (args[0]) is the full width at half
	// maximum in Hz.
	Lorentzian Function = iota + 1
	// Gaussian is exp(-2(πσt)²), where σ (args[0]) is the standard deviation in Hz.
	Gaussian
)

func (f Function) String() string {
	switch f {
	case Lorentzian:
		return "Lorentzian"
	case Gaussian:
		return "Gaussian"
	}
	return fmt.Sprintf("Function(%d)", int(f))
}

// ParseFunction parses a window name, case-insensitively.
func ParseFunction(s string) (Function, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lorentzian":
		return Lorentzian, nil
	case "gaussian":
		return Gaussian, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFunction, s)
}

func (f Function) MarshalText() ([]byte, error) {
	if f != Lorentzian && f != Gaussian {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFunction, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Function) UnmarshalText(text []byte) error {
	parsed, err := ParseFunction(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Apodization is one window applied along a spectral dimension.
type Apodization struct {
	Function  Function  `json:"function" mapstructure:"function" validate:"required"`
	Dimension int       `json:"dimension" mapstructure:"dimension" validate:"gte=0"`
	Args      []float64 `json:"args" mapstructure:"args" validate:"min=1,dive,gte=0,finite"`
	// Fraction scales the apodized result.
	Fraction float64 `json:"fraction" mapstructure:"fraction" validate:"finite"`
}

// NewApodization returns a window with fraction 1 on dimension 0.
func NewApodization(f Function, args ...float64) Apodization {
	return Apodization{Function: f, Args: args, Fraction: 1}
}

// UnmarshalJSON decodes an apodization with fraction 1 and args [0] by default.
func (a *Apodization) UnmarshalJSON(data []byte) error {
	type plain Apodization
	p := plain{Fraction: 1, Args: []float64{0}}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Apodization(p)
	return nil
}

// Window evaluates the decay at reciprocal (time) coordinate t in seconds.
func (a Apodization) Window(t float64) float64 {
	arg := 0.0
	if len(a.Args) > 0 {
		arg = a.Args[0]
	}
	switch a.Function {
	case Lorentzian:
		return math.Exp(-arg * math.Pi * math.Abs(t))
	case Gaussian:
		x := t * arg * math.Pi
		return math.Exp(-2 * x * x)
	}
	return 1
}
