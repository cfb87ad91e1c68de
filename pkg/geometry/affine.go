// Package geometry provides the small amount of 3D linear algebra the
// reformatting engine needs: points, 4×4 affine reslice transforms and
// rotation helpers built on gonum's spatial/r3 and mat packages.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point3 is a coordinate in volume space.
type Point3 = r3.Vec

// Affine4 is a 4×4 homogeneous transform stored row-major. The upper-left
// 3×3 block holds the reslice axes as columns (in-plane X, in-plane Y, plane
// normal) and the last column holds the translation.
type Affine4 [4][4]float64

// Identity returns the identity transform.
func Identity() Affine4 {
	return Affine4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// NewAffine composes Translation(t) ∘ rot.
func NewAffine(rot *r3.Mat, t Point3) Affine4 {
	a := Identity()
	a.SetRotation(rot)
	a.SetTranslation(t)
	return a
}

// Translation returns the translation column.
func (a Affine4) Translation() Point3 {
	return Point3{X: a[0][3], Y: a[1][3], Z: a[2][3]}
}

// SetTranslation assigns the translation column.
func (a *Affine4) SetTranslation(p Point3) {
	a[0][3] = p.X
	a[1][3] = p.Y
	a[2][3] = p.Z
}

// Rotation returns a copy of the upper-left 3×3 block.
func (a Affine4) Rotation() *r3.Mat {
	return r3.NewMat([]float64{
		a[0][0], a[0][1], a[0][2],
		a[1][0], a[1][1], a[1][2],
		a[2][0], a[2][1], a[2][2],
	})
}

// SetRotation replaces the upper-left 3×3 block, leaving the translation
// column and the bottom row untouched.
func (a *Affine4) SetRotation(m *r3.Mat) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a[i][j] = m.At(i, j)
		}
	}
}

// Axis returns column j (0..2) of the rotation block.
func (a Affine4) Axis(j int) Point3 {
	return Point3{X: a[0][j], Y: a[1][j], Z: a[2][j]}
}

// Normal is the third reslice axis, i.e. the direction perpendicular to the
// reformatted plane.
func (a Affine4) Normal() Point3 {
	return a.Axis(2)
}

// Dense returns the transform as a gonum matrix.
func (a Affine4) Dense() *mat.Dense {
	data := make([]float64, 0, 16)
	for i := 0; i < 4; i++ {
		data = append(data, a[i][:]...)
	}
	return mat.NewDense(4, 4, data)
}

// AffineFromDense copies a 4×4 gonum matrix into an Affine4.
func AffineFromDense(m mat.Matrix) Affine4 {
	var a Affine4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = m.At(i, j)
		}
	}
	return a
}

// Mul returns a∘b.
func (a Affine4) Mul(b Affine4) Affine4 {
	var out mat.Dense
	out.Mul(a.Dense(), b.Dense())
	return AffineFromDense(&out)
}

// Apply maps a plane-local point to volume space.
func (a Affine4) Apply(p Point3) Point3 {
	return Point3{
		X: a[0][0]*p.X + a[0][1]*p.Y + a[0][2]*p.Z + a[0][3],
		Y: a[1][0]*p.X + a[1][1]*p.Y + a[1][2]*p.Z + a[1][3],
		Z: a[2][0]*p.X + a[2][1]*p.Y + a[2][2]*p.Z + a[2][3],
	}
}

// EqualApprox reports whether every element of a and b differs by at most tol.
func (a Affine4) EqualApprox(b Affine4, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !scalar.EqualWithinAbs(a[i][j], b[i][j], tol) {
				return false
			}
		}
	}
	return true
}

// AxisRotation returns the 3×3 rotation by degrees about axis (right-hand rule).
func AxisRotation(degrees float64, axis Point3) *r3.Mat {
	return r3.NewRotation(Radians(degrees), axis).Mat()
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// IsFinite reports whether every component of p is neither NaN nor infinite.
func IsFinite(p Point3) bool {
	for _, c := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
