package mpr

import (
	"fmt"
	"math"

	"mprsync/pkg/geometry"
)

// Bounds is the axis-aligned extent of a volume: xmin, xmax, ymin, ymax,
// zmin, zmax.
type Bounds [6]float64

// Min returns the lower corner.
func (b Bounds) Min() geometry.Point3 {
	return geometry.Point3{X: b[0], Y: b[2], Z: b[4]}
}

// Max returns the upper corner.
func (b Bounds) Max() geometry.Point3 {
	return geometry.Point3{X: b[1], Y: b[3], Z: b[5]}
}

// VolumeFrame describes the geometry of a loaded volume. It is created once
// per volume and never modified.
type VolumeFrame struct {
	Center  geometry.Point3
	Bounds  Bounds
	Spacing geometry.Point3
}

// NewVolumeFrame validates and returns a frame.
func NewVolumeFrame(center geometry.Point3, bounds Bounds, spacing geometry.Point3) (VolumeFrame, error) {
	f := VolumeFrame{Center: center, Bounds: bounds, Spacing: spacing}
	if err := f.Validate(); err != nil {
		return VolumeFrame{}, err
	}
	return f, nil
}

// Validate checks that spacing is strictly positive and finite and that
// every bound pair is ordered.
func (f VolumeFrame) Validate() error {
	for axis, s := range [3]float64{f.Spacing.X, f.Spacing.Y, f.Spacing.Z} {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: spacing[%d] = %v", ErrInvalidFrame, axis, s)
		}
	}
	for axis := 0; axis < 3; axis++ {
		lo, hi := f.Bounds[2*axis], f.Bounds[2*axis+1]
		if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
			return fmt.Errorf("%w: bounds[%d] = [%v, %v]", ErrInvalidFrame, axis, lo, hi)
		}
	}
	return nil
}

// Contains reports whether p lies inside the bounds (inclusive).
func (f VolumeFrame) Contains(p geometry.Point3) bool {
	lo, hi := f.Bounds.Min(), f.Bounds.Max()
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

// Clamp returns p limited to the bounds. The engine never clamps on its own;
// hosts that want positions kept inside the volume call this before
// translating.
func (f VolumeFrame) Clamp(p geometry.Point3) geometry.Point3 {
	lo, hi := f.Bounds.Min(), f.Bounds.Max()
	return geometry.Point3{
		X: math.Max(lo.X, math.Min(hi.X, p.X)),
		Y: math.Max(lo.Y, math.Min(hi.Y, p.Y)),
		Z: math.Max(lo.Z, math.Min(hi.Z, p.Z)),
	}
}

// SliceSpacing is the distance one slice step moves in view v.
func (f VolumeFrame) SliceSpacing(v View) float64 {
	return spacingAlong(f.Spacing, v)
}

// initialHandle places the rotation handle on the axial crosshair line,
// halfway between the center and the top of the volume along +Y.
func (f VolumeFrame) initialHandle() geometry.Point3 {
	h := f.Center
	h.Y = (f.Bounds[3] + f.Center.Y) / 2
	// A flat volume would put the handle on the crosshair.
	if h.Y == f.Center.Y {
		h.Y = f.Center.Y + f.Spacing.Y
	}
	return h
}
