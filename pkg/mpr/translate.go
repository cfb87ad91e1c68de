package mpr

import (
	"gonum.org/v1/gonum/spatial/r3"

	"mprsync/pkg/geometry"
)

// ApplyTranslate moves the crosshair to pos. Every plane's translation column
// is assigned pos, rotations are untouched and the rotation handle keeps its
// offset from the crosshair. The source view does not affect the result;
// it is accepted so callers can record where the drag happened.
func ApplyTranslate(s *State, _ View, pos geometry.Point3) Update {
	delta := r3.Sub(pos, s.crosshair.Position)

	s.crosshair.Position = pos
	for _, v := range Views {
		s.planes[v].SetTranslation(pos)
	}
	s.handle = r3.Add(s.handle, delta)

	return Update{
		Changed: s.planeUpdates(Views[:]...),
		Overlay: s.Overlay(),
	}
}
