package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateLength is the vector length below which a direction is treated
// as undefined.
const degenerateLength = 1e-12

// OrthogonalityError returns the Frobenius norm of MᵀM − I. It is zero for a
// perfect rotation and grows with accumulated floating-point drift.
func OrthogonalityError(m *r3.Mat) float64 {
	var gram mat.Dense
	gram.Mul(m.T(), m)
	var diff mat.Dense
	diff.Sub(&gram, r3.Eye())
	return mat.Norm(&diff, 2)
}

// Orthonormalize returns the Gram-Schmidt orthonormalization of the columns
// of m. The first column keeps its direction, the second is made orthogonal
// to it and the third is rebuilt as their cross product so handedness is
// preserved.
func Orthonormalize(m *r3.Mat) *r3.Mat {
	x := r3.Unit(m.VecCol(0))
	y := m.VecCol(1)
	y = r3.Unit(r3.Sub(y, r3.Scale(r3.Dot(x, y), x)))
	z := r3.Cross(x, y)

	return r3.NewMat([]float64{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	})
}

// SignedAngle returns the angle in degrees swept from u to v. The magnitude
// is the arccosine of the normalized dot product. The sign follows ref: the
// angle is positive when u×v points along ref and negative otherwise,
// including the collinear case.
//
// ok is false when either vector is shorter than the degenerate threshold
// or not finite, in which case the angle is undefined.
func SignedAngle(u, v, ref Point3) (deg float64, ok bool) {
	nu, nv := r3.Norm(u), r3.Norm(v)
	if !(nu >= degenerateLength) || !(nv >= degenerateLength) {
		return 0, false
	}

	cos := r3.Dot(u, v) / (nu * nv)
	if math.IsNaN(cos) {
		return 0, false
	}
	cos = math.Max(-1, math.Min(1, cos))
	deg = Degrees(math.Acos(cos))
	if deg == 0 {
		return 0, true
	}

	if r3.Dot(r3.Cross(u, v), ref) <= 0 {
		deg = -deg
	}
	return deg, true
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod(-tiny, 360)+360 can round up to exactly 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}
