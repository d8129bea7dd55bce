// Package rotation rotates rank-2 irreducible spherical tensors with Wigner
// matrices, ZYZ Euler convention.
package rotation

import (
	"math"
	"math/cmplx"
)

// Tensor holds the five components of a rank-2 spherical tensor, indexed by
// k+2 for k = -2..2.
type Tensor [5]complex128

// At returns component k.
func (t Tensor) At(k int) complex128 { return t[k+2] }

// PAS returns the principal-axis components of a symmetric rank-2 tensor with
// anisotropy zeta and asymmetry eta (Haeberlen convention):
// R20 = √(3/2)·ζ, R2±1 = 0, R2±2 = -ζη/2.
func PAS(zeta, eta float64) Tensor {
	return Tensor{
		complex(-0.5*zeta*eta, 0),
		0,
		complex(math.Sqrt(1.5)*zeta, 0),
		0,
		complex(-0.5*zeta*eta, 0),
	}
}

// SmallD returns the reduced Wigner matrix d²_{m,k}(β), indexed [m+2][k+2].
func SmallD(beta float64) [5][5]float64 {
	c, s := math.Cos(beta), math.Sin(beta)
	// d_{m,k} for m >= |k|; the rest follow from
	// d_{m,k} = (-1)^{m-k} d_{k,m} = d_{-k,-m}.
	var (
		a22  = (1 + c) * (1 + c) / 4
		a21  = -(1 + c) * s / 2
		a20  = math.Sqrt(3.0/8) * s * s
		a2m1 = -(1 - c) * s / 2
		a2m2 = (1 - c) * (1 - c) / 4
		a11  = (1 + c) * (2*c - 1) / 2
		a10  = -math.Sqrt(1.5) * s * c
		a1m1 = (1 - c) * (2*c + 1) / 2
		a00  = (3*c*c - 1) / 2
	)
	return [5][5]float64{
		{a22, -a21, a20, -a2m1, a2m2},
		{a21, a11, -a10, a1m1, -a2m1},
		{a20, a10, a00, -a10, a20},
		{a2m1, a1m1, a10, a11, -a21},
		{a2m2, a2m1, a20, a21, a22},
	}
}

// Rotate returns R'_k = Σ_m R_m · D²_{m,k}(α, β, γ), with
// D_{m,k} = e^{-imα} d_{m,k}(β) e^{-ikγ}.
func Rotate(t Tensor, alpha, beta, gamma float64) Tensor {
	d := SmallD(beta)
	var out Tensor
	for k := -2; k <= 2; k++ {
		var sum complex128
		for m := -2; m <= 2; m++ {
			sum += t[m+2] * cmplx.Rect(d[m+2][k+2], -float64(m)*alpha)
		}
		out[k+2] = sum * cmplx.Rect(1, -float64(k)*gamma)
	}
	return out
}

// Rotor evaluates tensors in the lab frame for a sample spinning about an
// axis tilted by a fixed angle from the field.
type Rotor struct {
	d [5][5]float64
}

// NewRotor precomputes the reduced Wigner matrix of the rotor angle.
func NewRotor(angle float64) Rotor { return Rotor{d: SmallD(angle)} }

// Lab returns the lab-frame components of a rotor-frame tensor at rotor
// phase φ = 2π·ν_r·t.
func (r Rotor) Lab(t Tensor, phase float64) Tensor {
	var out Tensor
	for k := -2; k <= 2; k++ {
		var sum complex128
		for m := -2; m <= 2; m++ {
			if t[m+2] == 0 {
				continue
			}
			sum += t[m+2] * cmplx.Rect(r.d[m+2][k+2], -float64(m)*phase)
		}
		out[k+2] = sum
	}
	return out
}

// Lab0 returns only the k = 0 lab component.
func (r Rotor) Lab0(t Tensor, phase float64) complex128 {
	var sum complex128
	for m := -2; m <= 2; m++ {
		if t[m+2] == 0 {
			continue
		}
		sum += t[m+2] * cmplx.Rect(r.d[m+2][2], -float64(m)*phase)
	}
	return sum
}
