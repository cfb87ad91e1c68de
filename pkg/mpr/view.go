package mpr

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// View identifies one of the three orthogonal reformatted planes.
type View int

const (
	Axial View = iota
	Coronal
	Sagittal
)

// Views lists every view in index order.
var Views = [3]View{Axial, Coronal, Sagittal}

func (v View) String() string {
	switch v {
	case Axial:
		return "axial"
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Valid reports whether v is one of the three known views.
func (v View) Valid() bool {
	return v >= Axial && v <= Sagittal
}

// ParseView accepts the lower-case view names and their first letter.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "axial", "a":
		return Axial, nil
	case "coronal", "c":
		return Coronal, nil
	case "sagittal", "s":
		return Sagittal, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// UnmarshalText lets views be decoded from YAML and flags by name.
func (v *View) UnmarshalText(text []byte) error {
	parsed, err := ParseView(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText encodes the view by name.
func (v View) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	return []byte(v.String()), nil
}

// Base orientations, row-major. Columns are the reslice axes; the third
// column is the plane normal. Axial looks along Z, Coronal along Y and
// Sagittal along X.
var (
	axialBase = [9]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	// 90° about X.
	coronalBase = [9]float64{
		1, 0, 0,
		0, 0, 1,
		0, -1, 0,
	}
	// Coronal followed by a further 90° about Y.
	sagittalBase = [9]float64{
		0, 0, -1,
		1, 0, 0,
		0, -1, 0,
	}
)

// BaseOrientation returns a fresh copy of the zero-rotation reference
// orientation of v.
func BaseOrientation(v View) *r3.Mat {
	var src [9]float64
	switch v {
	case Coronal:
		src = coronalBase
	case Sagittal:
		src = sagittalBase
	default:
		src = axialBase
	}
	return r3.NewMat(src[:])
}

// spacingAlong returns the voxel spacing along the fixed world axis v looks
// down.
func spacingAlong(spacing r3.Vec, v View) float64 {
	switch v {
	case Coronal:
		return spacing.Y
	case Sagittal:
		return spacing.X
	default:
		return spacing.Z
	}
}
