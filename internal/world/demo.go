package world

// NewDemo builds a small fixed scene spanning several chunks: a flat grass
// floor over dirt, a stone tower straddling a chunk border, a brick arch and
// a floating sand block. It exists so the binaries have something to draw
// without a snapshot file.
func NewDemo(chunkSize int) *World {
	w := New(chunkSize)
	span := 2 * chunkSize

	// Initialize a flat world
	for x := -span; x < span; x++ {
		for z := -span; z < span; z++ {
			w.Set(x, 0, z, BlockTypeDirt)
			w.Set(x, 1, z, BlockTypeGrass)
		}
	}

	// Tower across the x = 0 chunk border.
	for y := 2; y < 2+chunkSize; y++ {
		for x := -1; x <= 0; x++ {
			for z := 2; z <= 3; z++ {
				w.Set(x, y, z, BlockTypeStone)
			}
		}
	}

	// Arch.
	for y := 2; y < 6; y++ {
		w.Set(-6, y, -6, BlockTypeBrick)
		w.Set(-2, y, -6, BlockTypeBrick)
	}
	for x := -6; x <= -2; x++ {
		w.Set(x, 6, -6, BlockTypeBrick)
	}

	// Tree.
	for y := 2; y < 6; y++ {
		w.Set(5, y, -4, BlockTypeWood)
	}
	for x := 4; x <= 6; x++ {
		for z := -5; z <= -3; z++ {
			w.Set(x, 6, z, BlockTypeLeaves)
		}
	}

	w.Set(3, 5, 6, BlockTypeSand)
	return w
}
