// Package physics answers ray queries against the block grid.
package physics

import (
	"math"

	"voxel-render/internal/profiling"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0

	stepSize = float32(0.02)
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int // last empty cell before the hit
	Distance         float32
	Hit              bool
}

// Raycast marches from start along direction and reports the first solid
// cell. Cell (x, y, z) spans [x, x+1) on every axis.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, w *world.World) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	result := RaycastResult{}
	if direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()
	steps := int(maxDist / stepSize)

	lastEmpty := cellOf(start)
	prev := lastEmpty
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}
		cell := cellOf(start.Add(dir.Mul(dist)))
		if cell == prev && i > 0 {
			continue
		}
		prev = cell

		if !w.IsAir(cell[0], cell[1], cell[2]) {
			result.HitPosition = cell
			result.AdjacentPosition = lastEmpty
			result.Distance = dist
			result.Hit = true
			return result
		}
		lastEmpty = cell
	}
	return result
}

func cellOf(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z()))),
	}
}
