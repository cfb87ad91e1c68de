package models

import (
	"image"
)

// Slice represents a single 2D image slice with metadata
type Slice struct {
	// Image is the actual slice image data
	Image image.Image

	// Index is the position of this slice in the sequence
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Thickness is the physical thickness of the slice in mm
	Thickness float64

	// Position is the physical position of the slice along the stacking axis
	Position float64
}

// Vec3 is a per-axis triple, used for voxel size and origin
type Vec3 struct {
	X, Y, Z float64
}

// Volume represents a regular 3D scalar grid
type Volume struct {
	// Data is the 3D volume data as a 1D array, x fastest, then y, then z
	Data []float64

	// Width is the width of the volume in voxels
	Width int

	// Height is the height of the volume in voxels
	Height int

	// Depth is the depth of the volume in voxels
	Depth int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize Vec3

	// Origin is the physical position of voxel (0,0,0)
	Origin Vec3
}

// Index returns the offset of voxel (x, y, z) in Data
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the voxel value at (x, y, z), or 0 outside the grid
func (v *Volume) At(x, y, z int) float64 {
	if x < 0 || y < 0 || z < 0 || x >= v.Width || y >= v.Height || z >= v.Depth {
		return 0
	}
	return v.Data[v.Index(x, y, z)]
}

// Empty reports whether the volume holds no voxels
func (v *Volume) Empty() bool {
	return v.Width == 0 || v.Height == 0 || v.Depth == 0
}
