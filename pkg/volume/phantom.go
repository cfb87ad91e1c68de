package volume

import (
	"fmt"

	"mprsync/internal/models"
)

// Phantom intensities
const (
	phantomShell  = 0.4
	phantomCore   = 0.7
	phantomMarker = 1.0
)

// Phantom builds an n^3 test volume: a spherical shell around an
// off-centre ellipsoidal core, plus a bright marker block in the +X+Y+Z
// octant so reformatted orientations can be told apart.
func Phantom(n int, spacing models.Vec3) (*models.Volume, error) {
	if n < 2 {
		return nil, fmt.Errorf("phantom size must be at least 2, got %d", n)
	}
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		return nil, fmt.Errorf("spacing must be positive, got %+v", spacing)
	}

	vol := &models.Volume{
		Data:      make([]float64, n*n*n),
		Width:     n,
		Height:    n,
		Depth:     n,
		VoxelSize: spacing,
	}

	c := float64(n-1) / 2
	r := 0.45 * float64(n)
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				dx, dy, dz := float64(x)-c, float64(y)-c, float64(z)-c
				var v float64
				if dx*dx+dy*dy+dz*dz <= r*r {
					v = phantomShell
				}
				// Core is stretched along X and shifted towards -Y
				ex, ey, ez := dx/(0.6*r), (dy+0.2*r)/(0.3*r), dz/(0.4*r)
				if ex*ex+ey*ey+ez*ez <= 1 {
					v = phantomCore
				}
				if dx > 0.5*c && dy > 0.5*c && dz > 0.5*c {
					v = phantomMarker
				}
				vol.Data[vol.Index(x, y, z)] = v
			}
		}
	}
	return vol, nil
}
