package runtime

import (
	"github.com/aretw0/mrsim/internal/rotation"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/orientation"
)

// tensorAngles returns the Euler angles of every anisotropic tensor of sys
// in site order, shielding before quadrupolar.
func tensorAngles(sys domain.SpinSystem) []domain.EulerAngles {
	var out []domain.EulerAngles
	for _, site := range sys.Sites {
		if s := site.ShieldingSymmetric; s != nil && s.Zeta != 0 {
			out = append(out, s.EulerAngles)
		}
		if q := site.Quadrupolar; q != nil && q.Cq != 0 {
			out = append(out, q.EulerAngles)
		}
	}
	return out
}

// crystalFrame returns the orientation of the first anisotropic tensor of
// sys. A powder average does not change when every tensor of a system is
// rotated together, so site tensors are expressed relative to this frame.
func crystalFrame(sys domain.SpinSystem) domain.EulerAngles {
	if angles := tensorAngles(sys); len(angles) > 0 {
		return angles[0]
	}
	return domain.EulerAngles{}
}

// RequiredVolume returns the smallest integration volume that averages every
// system correctly. The octant suffices when all tensors of each system share
// a principal frame; otherwise the hemisphere is needed, as rank-2 and rank-4
// frequencies are symmetric under inversion.
func RequiredVolume(systems []domain.SpinSystem) orientation.Volume {
	for _, sys := range systems {
		angles := tensorAngles(sys)
		for _, a := range angles[min(1, len(angles)):] {
			if a != angles[0] {
				return orientation.Hemisphere
			}
		}
	}
	return orientation.Octant
}

// inFrame returns the principal-axis tensor pas, oriented by e in the
// crystal, as seen from frame.
func inFrame(pas rotation.Tensor, e, frame domain.EulerAngles) rotation.Tensor {
	if e == frame {
		return pas
	}
	t := rotation.Rotate(pas, e.Alpha, e.Beta, e.Gamma)
	return rotation.Rotate(t, -frame.Gamma, -frame.Beta, -frame.Alpha)
}
