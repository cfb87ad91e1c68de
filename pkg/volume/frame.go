package volume

import (
	"mprsync/internal/models"
	"mprsync/pkg/geometry"
	"mprsync/pkg/mpr"
)

// FrameOf derives the engine frame of a volume. Bounds run from the centre
// of the first voxel to the centre of the last.
func FrameOf(vol *models.Volume) (mpr.VolumeFrame, error) {
	o, s := vol.Origin, vol.VoxelSize
	maxX := o.X + float64(vol.Width-1)*s.X
	maxY := o.Y + float64(vol.Height-1)*s.Y
	maxZ := o.Z + float64(vol.Depth-1)*s.Z

	center := geometry.Point3{X: (o.X + maxX) / 2, Y: (o.Y + maxY) / 2, Z: (o.Z + maxZ) / 2}
	bounds := mpr.Bounds{o.X, maxX, o.Y, maxY, o.Z, maxZ}
	spacing := geometry.Point3{X: s.X, Y: s.Y, Z: s.Z}
	return mpr.NewVolumeFrame(center, bounds, spacing)
}
