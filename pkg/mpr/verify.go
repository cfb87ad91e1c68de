package mpr

import (
	"errors"
	"fmt"

	"mprsync/pkg/geometry"
)

// DefaultOrthogonalityTolerance bounds ‖MᵀM − I‖ for a plane orientation
// to count as rigid.
const DefaultOrthogonalityTolerance = 1e-6

// Verify checks the state invariants: every plane's translation column equals
// the crosshair exactly and every plane's orientation is orthonormal within
// tol. All violations are joined into one error wrapping ErrInvariant.
func (s *State) Verify(tol float64) error {
	var errs []error
	for _, v := range Views {
		p := s.planes[v]
		if got := p.Translation(); got != s.crosshair.Position {
			errs = append(errs, fmt.Errorf("%w: %s plane centred at %v, crosshair at %v",
				ErrInvariant, v, got, s.crosshair.Position))
		}
		if e := geometry.OrthogonalityError(p.Rotation()); !(e <= tol) {
			errs = append(errs, fmt.Errorf("%w: %s orientation off by %g", ErrInvariant, v, e))
		}
		if p[3] != [4]float64{0, 0, 0, 1} {
			errs = append(errs, fmt.Errorf("%w: %s bottom row %v", ErrInvariant, v, p[3]))
		}
	}
	return errors.Join(errs...)
}

// ExpectedOrientation returns the orientation v should have for the
// accumulated crosshair rotation: the base orientation, turned about the
// axial viewing axis for the coronal and sagittal views. Incremental
// updates in ApplyRotate must agree with it up to rounding.
func (s *State) ExpectedOrientation(v View) geometry.Affine4 {
	base := geometry.NewAffine(BaseOrientation(v), s.crosshair.Position)
	if v == Axial {
		return base
	}
	turn := geometry.NewAffine(geometry.AxisRotation(s.crosshair.RotationAngle, viewingAxis), geometry.Point3{})
	out := turn.Mul(base)
	out.SetTranslation(s.crosshair.Position)
	return out
}
