package world

import "math"

// TerrainOptions shapes NewTerrain.
type TerrainOptions struct {
	Seed      int64
	Radius    int // half-width in blocks around the origin
	BaseLevel int
	Amplitude int
	Scale     float64 // blocks per noise lattice cell
	SeaLevel  int
}

// DefaultTerrain returns options for a rolling landscape a few chunks wide.
func DefaultTerrain(seed int64) TerrainOptions {
	return TerrainOptions{
		Seed:      seed,
		Radius:    48,
		BaseLevel: 4,
		Amplitude: 14,
		Scale:     32,
		SeaLevel:  7,
	}
}

// Height returns the surface height of column (x, z).
func (o TerrainOptions) Height(x, z int) int {
	scale := o.Scale
	if scale <= 0 {
		scale = 1
	}
	n := octaveNoise2D(float64(x)/scale, float64(z)/scale, o.Seed, 4, 0.5, 2.0)
	return o.BaseLevel + int(math.Round(n*float64(o.Amplitude)))
}

// NewTerrain fills a square of columns from a heightmap: stone below, dirt
// under the surface, then grass, or sand at and below sea level.
func NewTerrain(chunkSize int, o TerrainOptions) *World {
	w := New(chunkSize)
	for x := -o.Radius; x < o.Radius; x++ {
		for z := -o.Radius; z < o.Radius; z++ {
			h := o.Height(x, z)
			for y := 0; y <= h; y++ {
				bt := BlockTypeStone
				switch {
				case y == h && h <= o.SeaLevel:
					bt = BlockTypeSand
				case y == h:
					bt = BlockTypeGrass
				case y >= h-2:
					bt = BlockTypeDirt
				}
				w.Set(x, y, z, bt)
			}
		}
	}
	return w
}
