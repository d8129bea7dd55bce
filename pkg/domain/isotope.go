package domain

import (
	"fmt"
	"sort"
)

// Isotope describes the nuclear properties used by the frequency engine.
type Isotope struct {
	Symbol string `json:"symbol"`
	// Spin is the nuclear spin quantum number I.
	Spin float64 `json:"spin"`
	// GyromagneticRatio is γ/2π in MHz/T.
	GyromagneticRatio float64 `json:"gyromagnetic_ratio"`
	// NaturalAbundance is given in percent.
	NaturalAbundance float64 `json:"natural_abundance"`
}

// LarmorFrequency returns ν0 = -γB0 in Hz for the given flux density in T.
func (i Isotope) LarmorFrequency(fluxDensity float64) float64 {
	return -i.GyromagneticRatio * fluxDensity * 1e6
}

// IsQuadrupolar reports whether the nucleus has spin greater than 1/2.
func (i Isotope) IsQuadrupolar() bool { return i.Spin > 0.5 }

var isotopes = map[string]Isotope{
	"1H":    {"1H", 0.5, 42.57748, 99.9885},
	"2H":    {"2H", 1, 6.53590, 0.0115},
	"6Li":   {"6Li", 1, 6.26613, 7.59},
	"7Li":   {"7Li", 1.5, 16.54708, 92.41},
	"9Be":   {"9Be", 1.5, -5.98340, 100},
	"11B":   {"11B", 1.5, 13.66297, 80.1},
	"13C":   {"13C", 0.5, 10.70839, 1.07},
	"14N":   {"14N", 1, 3.07770, 99.632},
	"15N":   {"15N", 0.5, -4.31727, 0.368},
	"17O":   {"17O", 2.5, -5.77426, 0.038},
	"19F":   {"19F", 0.5, 40.07757, 100},
	"21Ne":  {"21Ne", 1.5, -3.36307, 0.27},
	"23Na":  {"23Na", 1.5, 11.26952, 100},
	"25Mg":  {"25Mg", 2.5, -2.60834, 10.0},
	"27Al":  {"27Al", 2.5, 11.10308, 100},
	"29Si":  {"29Si", 0.5, -8.46544, 4.6832},
	"31P":   {"31P", 0.5, 17.25144, 100},
	"33S":   {"33S", 1.5, 3.27171, 0.75},
	"35Cl":  {"35Cl", 1.5, 4.17654, 75.76},
	"37Cl":  {"37Cl", 1.5, 3.47652, 24.24},
	"39K":   {"39K", 1.5, 1.98932, 93.2581},
	"41K":   {"41K", 1.5, 1.09181, 6.7302},
	"43Ca":  {"43Ca", 3.5, -2.86967, 0.135},
	"45Sc":  {"45Sc", 3.5, 10.35907, 100},
	"47Ti":  {"47Ti", 2.5, -2.40404, 7.44},
	"49Ti":  {"49Ti", 3.5, -2.40475, 5.41},
	"51V":   {"51V", 3.5, 11.21330, 99.750},
	"55Mn":  {"55Mn", 2.5, 10.57636, 100},
	"57Fe":  {"57Fe", 0.5, 1.38154, 2.119},
	"59Co":  {"59Co", 3.5, 10.07700, 100},
	"67Zn":  {"67Zn", 2.5, 2.66874, 4.10},
	"73Ge":  {"73Ge", 4.5, -1.48965, 7.76},
	"77Se":  {"77Se", 0.5, 8.15706, 7.63},
	"83Kr":  {"83Kr", 4.5, -1.64427, 11.49},
	"87Sr":  {"87Sr", 4.5, -1.85243, 7.00},
	"89Y":   {"89Y", 0.5, -2.09492, 100},
	"93Nb":  {"93Nb", 4.5, 10.45231, 100},
	"113In": {"113In", 4.5, 9.36550, 4.29},
	"119Sn": {"119Sn", 0.5, -15.96554, 8.59},
	"123Sb": {"123Sb", 3.5, 5.55323, 42.79},
	"129Xe": {"129Xe", 0.5, -11.86038, 26.40},
	"133Cs": {"133Cs", 3.5, 5.62340, 100},
	"195Pt": {"195Pt", 0.5, 9.29404, 33.832},
	"207Pb": {"207Pb", 0.5, 9.03928, 22.1},
}

// LookupIsotope returns the isotope registered under symbol.
func LookupIsotope(symbol string) (Isotope, error) {
	iso, ok := isotopes[symbol]
	if !ok {
		return Isotope{}, fmt.Errorf("%q: %w", symbol, ErrUnknownIsotope)
	}
	return iso, nil
}

// AllowedIsotopes lists the registered symbols with the given spin, sorted.
// A negative spin lists every isotope.
func AllowedIsotopes(spin float64) []string {
	out := make([]string, 0, len(isotopes))
	for symbol, iso := range isotopes {
		if spin < 0 || iso.Spin == spin {
			out = append(out, symbol)
		}
	}
	sort.Strings(out)
	return out
}
