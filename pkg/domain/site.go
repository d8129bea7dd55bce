package domain

// EulerAngles orients a tensor principal axis system in the crystal frame,
// ZYZ convention, in radians.
type EulerAngles struct {
	Alpha float64 `json:"alpha,omitempty" mapstructure:"alpha"`
	Beta  float64 `json:"beta,omitempty" mapstructure:"beta"`
	Gamma float64 `json:"gamma,omitempty" mapstructure:"gamma"`
}

// SymmetricShielding is the traceless symmetric part of the nuclear
// shielding tensor in Haeberlen convention.
type SymmetricShielding struct {
	// Zeta is the anisotropy in ppm.
	Zeta float64 `json:"zeta" mapstructure:"zeta"`
	// Eta is the asymmetry, 0 <= eta <= 1.
	Eta         float64 `json:"eta" mapstructure:"eta" validate:"gte=0,lte=1"`
	EulerAngles `mapstructure:",squash"`
}

// Quadrupolar is the electric field gradient interaction of a spin > 1/2 site.
type Quadrupolar struct {
	// Cq is the quadrupolar coupling constant in Hz.
	Cq          float64 `json:"Cq" mapstructure:"Cq"`
	Eta         float64 `json:"eta" mapstructure:"eta" validate:"gte=0,lte=1"`
	EulerAngles `mapstructure:",squash"`
}

// Site is a single nucleus with its tensor parameters.
type Site struct {
	Name        string `json:"name,omitempty" mapstructure:"name"`
	Isotope     string `json:"isotope" mapstructure:"isotope" validate:"required"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	// IsotropicChemicalShift is given in ppm.
	IsotropicChemicalShift float64             `json:"isotropic_chemical_shift" mapstructure:"isotropic_chemical_shift"`
	ShieldingSymmetric     *SymmetricShielding `json:"shielding_symmetric,omitempty" mapstructure:"shielding_symmetric" validate:"omitempty"`
	Quadrupolar            *Quadrupolar        `json:"quadrupolar,omitempty" mapstructure:"quadrupolar" validate:"omitempty"`
}

// IsotropicFrequency returns the isotropic chemical shift in Hz at the given
// flux density, -γ·B0·δ.
func (s Site) IsotropicFrequency(fluxDensity float64) (float64, error) {
	iso, err := LookupIsotope(s.Isotope)
	if err != nil {
		return 0, err
	}
	return iso.LarmorFrequency(fluxDensity) * s.IsotropicChemicalShift * 1e-6, nil
}
