package mpr

import (
	"gonum.org/v1/gonum/spatial/r3"

	"mprsync/pkg/geometry"
)

// ApplyStep moves the crosshair one slice along the current normal of v's
// plane, which after a rotation is no longer a world axis. The step length
// is the volume spacing along v's base axis. dir must be +1 or -1; Dispatch
// enforces this, direct callers get a step scaled by whatever they pass.
func ApplyStep(s *State, v View, dir int) Update {
	return ApplyTranslate(s, v, StepTarget(s, v, dir))
}

// StepTarget returns where ApplyStep would move the crosshair, without
// changing s.
func StepTarget(s *State, v View, dir int) geometry.Point3 {
	n := r3.Unit(s.planes[v].Normal())
	step := r3.Scale(float64(dir)*s.frame.SliceSpacing(v), n)
	return r3.Add(s.crosshair.Position, step)
}
