package mpr

import (
	"gonum.org/v1/gonum/spatial/r3"

	"mprsync/pkg/geometry"
)

// viewingAxis is the direction the axial view is looked at along. Rotation
// angles are signed against it, so a clockwise drag on screen is positive,
// and the coronal and sagittal planes turn about it by the same angle so
// that their normals follow the handle.
var viewingAxis = geometry.Point3{Z: -1}

// rotatedViews are the planes a rotation gesture turns. The axial plane is
// the one being looked at and stays put.
var rotatedViews = [...]View{Coronal, Sagittal}

// RotationIncrement returns the signed angle in degrees that moving the
// rotation handle from prev to next sweeps around center. ok is false when
// either handle position coincides with center.
func RotationIncrement(center, prev, next geometry.Point3) (deg float64, ok bool) {
	u := r3.Sub(prev, center)
	v := r3.Sub(next, center)
	return geometry.SignedAngle(u, v, viewingAxis)
}

// ApplyRotate measures the rotation swept by moving the handle to
// handlePos and applies it to the coronal and sagittal planes about the
// crosshair. A handle on top of the crosshair makes the angle undefined and
// the call is a no-op returning an Update with no changed planes.
func ApplyRotate(s *State, handlePos geometry.Point3) Update {
	angle, ok := RotationIncrement(s.crosshair.Position, s.handle, handlePos)
	if !ok {
		return Update{Overlay: s.Overlay()}
	}

	s.crosshair.RotationAngle = geometry.WrapDegrees(s.crosshair.RotationAngle + angle)

	// The translation column already equals the crosshair, so rotating about
	// the crosshair only needs the 3×3 block pre-multiplied.
	r := geometry.AxisRotation(angle, viewingAxis)
	for _, v := range rotatedViews {
		var rotated r3.Mat
		rotated.Mul(r, s.planes[v].Rotation())
		s.planes[v].SetRotation(&rotated)
	}

	s.rotationCounter++
	s.sinceOrthoPass++
	if s.sinceOrthoPass >= s.opts.ReorthonormalizeEvery {
		s.reorthonormalize()
	}

	for _, v := range Views {
		s.lineAngles[v] = geometry.WrapDegrees(s.lineAngles[v] - angle)
	}
	s.handle = handlePos

	return Update{
		Changed:     s.planeUpdates(rotatedViews[:]...),
		Overlay:     s.Overlay(),
		AzimuthHint: angle,
	}
}

// reorthonormalize removes accumulated drift from the rotated orientations.
func (s *State) reorthonormalize() {
	for _, v := range rotatedViews {
		s.planes[v].SetRotation(geometry.Orthonormalize(s.planes[v].Rotation()))
	}
	s.sinceOrthoPass = 0
}
