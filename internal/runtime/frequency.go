package runtime

import (
	"fmt"
	"math"

	"github.com/aretw0/mrsim/internal/rotation"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/orientation"
)

var sqrt2over3 = math.Sqrt(2.0 / 3)

// siteModel holds the crystal-frame tensors of one site.
type siteModel struct {
	spin   float64
	levels int
	// gamma is γ/2π in MHz/T.
	gamma float64
	// iso is the isotropic chemical shift in ppm.
	iso float64

	shielding    rotation.Tensor // ppm
	hasShielding bool

	efg     rotation.Tensor // unitless, R20 = √(3/2) along the principal axis
	hasQuad bool
	// quadK is Cq / (2I(2I-1)) in Hz.
	quadK float64
}

// newSiteModel builds the tensors of site in the given crystal frame.
func newSiteModel(site domain.Site, frame domain.EulerAngles) (siteModel, error) {
	iso, err := domain.LookupIsotope(site.Isotope)
	if err != nil {
		return siteModel{}, err
	}
	m := siteModel{
		spin:   iso.Spin,
		levels: int(math.Round(2*iso.Spin)) + 1,
		gamma:  iso.GyromagneticRatio,
		iso:    site.IsotropicChemicalShift,
	}
	if s := site.ShieldingSymmetric; s != nil && s.Zeta != 0 {
		m.shielding = inFrame(rotation.PAS(s.Zeta, s.Eta), s.EulerAngles, frame)
		m.hasShielding = true
	}
	if q := site.Quadrupolar; q != nil && q.Cq != 0 {
		if !iso.IsQuadrupolar() {
			return siteModel{}, fmt.Errorf("site %s: quadrupolar coupling on spin %g", site.Isotope, iso.Spin)
		}
		m.efg = inFrame(rotation.PAS(1, q.Eta), q.EulerAngles, frame)
		m.hasQuad = true
		m.quadK = q.Cq / (2 * iso.Spin * (2*iso.Spin - 1))
	}
	return m, nil
}

// larmor returns the Larmor frequency magnitude |γ|·B0 in Hz.
func (m siteModel) larmor(fluxDensity float64) float64 {
	return math.Abs(m.gamma) * fluxDensity * 1e6
}

// crystallite holds the rotor-frame tensors of a site for one orientation.
type crystallite struct {
	shielding rotation.Tensor
	efg       rotation.Tensor
}

func (m siteModel) orient(node orientation.Node) crystallite {
	var c crystallite
	if m.hasShielding {
		c.shielding = rotation.Rotate(m.shielding, node.Alpha, node.Beta, 0)
	}
	if m.hasQuad {
		c.efg = rotation.Rotate(m.efg, node.Alpha, node.Beta, 0)
	}
	return c
}

// energies fills out[level] with the energy, in Hz, of the state
// m = -I + level for lab-frame tensors at one instant. Transition frequencies
// are differences e(m_initial) - e(m_final), so a p = -1 transition of a site
// with shift δ sits at |ν0|·δ.
func (m siteModel) energies(out []float64, c crystallite, rotor rotation.Rotor, phase, larmor float64) {
	shift := m.iso
	if m.hasShielding {
		shift += sqrt2over3 * real(rotor.Lab0(c.shielding, phase))
	}
	zeeman := larmor * 1e-6 * shift

	var q rotation.Tensor
	if m.hasQuad {
		q = rotor.Lab(c.efg, phase)
	}
	ii := m.spin * (m.spin + 1)

	for level := 0; level < m.levels; level++ {
		mz := -m.spin + float64(level)
		e := zeeman * mz
		if m.hasQuad {
			e += m.quadK * real(q.At(0)) * (3*mz*mz - ii) / math.Sqrt(6)
			e += m.secondOrder(q, mz, larmor)
		}
		out[level] = e
	}
}

// secondOrder is the second-order perturbation of state mz by the
// non-secular quadrupolar terms.
func (m siteModel) secondOrder(q rotation.Tensor, mz, larmor float64) float64 {
	ii := m.spin * (m.spin + 1)
	up := func(x float64) float64 { return math.Sqrt(math.Max(ii-x*(x+1), 0)) }
	down := func(x float64) float64 { return math.Sqrt(math.Max(ii-x*(x-1), 0)) }

	elements := [4]struct {
		q  int
		el float64
	}{
		{1, -0.5 * (2*mz + 1) * up(mz)},
		{-1, 0.5 * (2*mz - 1) * down(mz)},
		{2, 0.5 * up(mz) * up(mz+1)},
		{-2, 0.5 * down(mz) * down(mz-1)},
	}

	sum := 0.0
	for _, e := range elements {
		if e.el == 0 {
			continue
		}
		amp := q.At(-e.q) * complex(m.quadK*e.el, 0)
		sum += (real(amp)*real(amp) + imag(amp)*imag(amp)) / (-larmor * float64(e.q))
	}
	return sum
}
