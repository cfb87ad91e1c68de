// Package mpr keeps three orthogonal reformatting planes (axial, coronal,
// sagittal) consistent with a single shared crosshair point.
//
// A State owns the crosshair, the rotation handle and one plane transform per
// view. All changes go through three protocols:
//
//   - Translate moves the crosshair; every plane is re-centred on it.
//   - Rotate turns the coronal and sagittal planes about the axial normal,
//     measured from a drag of the rotation handle.
//   - Step moves the crosshair one slice along a view's current normal.
//
// Each protocol returns an Update naming the planes that must be resampled.
// State is not safe for concurrent use; Controller serializes access for
// hosts that deliver events from several goroutines.
package mpr

import (
	"mprsync/pkg/geometry"
)

// DefaultReorthonormalizeEvery is the number of rotation increments between
// Gram-Schmidt passes over the rotated plane orientations.
const DefaultReorthonormalizeEvery = 16

// Crosshair is the shared point all three planes pass through, plus the
// rotation accumulated about the axial normal in degrees, in [0, 360).
type Crosshair struct {
	Position      geometry.Point3
	RotationAngle float64
}

// Options tune numerical behaviour of a State.
type Options struct {
	// ReorthonormalizeEvery sets how many rotation increments may accumulate
	// before the rotated orientations are re-orthonormalized. Values below 1
	// re-orthonormalize after every increment.
	ReorthonormalizeEvery int
}

// DefaultOptions returns the options NewState uses when none are given.
func DefaultOptions() Options {
	return Options{ReorthonormalizeEvery: DefaultReorthonormalizeEvery}
}

// State is the complete synchronization state for one loaded volume.
type State struct {
	frame     VolumeFrame
	crosshair Crosshair
	handle    geometry.Point3
	planes    [3]geometry.Affine4

	// lineAngles is the in-plane rotation of each view's crosshair overlay.
	lineAngles [3]float64

	opts            Options
	sinceOrthoPass  int
	rotationCounter int
}

// NewState builds the three plane transforms for frame, centred on the volume
// with zero rotation.
func NewState(frame VolumeFrame, opts ...Options) *State {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	s := &State{
		frame:     frame,
		crosshair: Crosshair{Position: frame.Center},
		handle:    frame.initialHandle(),
		opts:      o,
	}
	for _, v := range Views {
		s.planes[v] = geometry.NewAffine(BaseOrientation(v), frame.Center)
	}
	return s
}

// Frame returns the volume frame the state was built from.
func (s *State) Frame() VolumeFrame { return s.frame }

// Crosshair returns the current crosshair.
func (s *State) Crosshair() Crosshair { return s.crosshair }

// Handle returns the rotation handle position.
func (s *State) Handle() geometry.Point3 { return s.handle }

// Plane returns the plane transform for v. The result is a copy.
func (s *State) Plane(v View) geometry.Affine4 { return s.planes[v] }

// Planes returns copies of all three plane transforms indexed by View.
func (s *State) Planes() [3]geometry.Affine4 { return s.planes }

// Rotations returns the number of non-degenerate rotation increments applied.
func (s *State) Rotations() int { return s.rotationCounter }

// Overlay returns the overlay graphics state for the display.
func (s *State) Overlay() Overlay {
	return Overlay{
		Crosshair:  s.crosshair.Position,
		Handle:     s.handle,
		LineAngles: s.lineAngles,
	}
}

func (s *State) planeUpdates(views ...View) []PlaneUpdate {
	out := make([]PlaneUpdate, 0, len(views))
	for _, v := range views {
		out = append(out, PlaneUpdate{View: v, Transform: s.planes[v]})
	}
	return out
}
