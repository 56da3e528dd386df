package meshing

import (
	"math/bits"

	"voxel-render/internal/world"
)

// BlockReader answers occupancy queries in a chunk's local coordinates,
// including coordinates one step outside the chunk. *world.World is the
// production implementation.
type BlockReader interface {
	BlockAt(c *world.Chunk, x, y, z int) world.BlockType
}

// FaceMask returns one bit per Direction, set when the neighbour in that
// direction is air or unloaded and the face is therefore visible.
func FaceMask(r BlockReader, c *world.Chunk, x, y, z int) uint8 {
	var mask uint8
	for _, d := range Directions {
		dx, dy, dz := d.Offset()
		if r.BlockAt(c, x+dx, y+dy, z+dz) == world.BlockTypeAir {
			mask |= 1 << d
		}
	}
	return mask
}

// BlockFaces returns the vertices of every visible face of the block bt at
// local (x, y, z) in c: six per exposed face, faces in Directions order,
// positions in world block units.
func BlockFaces(r BlockReader, c *world.Chunk, x, y, z int, bt world.BlockType) []Vertex {
	mask := FaceMask(r, c, x, y, z)
	if mask == 0 {
		return nil
	}
	out := make([]Vertex, 0, bits.OnesCount8(mask)*VerticesPerFace)
	return appendFaces(out, c, x, y, z, bt, mask)
}

// AppendBlockFaces is BlockFaces appending into dst.
func AppendBlockFaces(dst []Vertex, r BlockReader, c *world.Chunk, x, y, z int, bt world.BlockType) []Vertex {
	return appendFaces(dst, c, x, y, z, bt, FaceMask(r, c, x, y, z))
}

func appendFaces(dst []Vertex, c *world.Chunk, x, y, z int, bt world.BlockType, mask uint8) []Vertex {
	if mask == 0 {
		return dst
	}
	ox, oy, oz := c.Origin()
	bx, by, bz := int32(ox+x), int32(oy+y), int32(oz+z)
	for _, d := range Directions {
		if mask&(1<<d) == 0 {
			continue
		}
		for _, k := range faceCorners[d] {
			dst = append(dst, Vertex{X: bx + k[0], Y: by + k[1], Z: bz + k[2], Tag: bt})
		}
	}
	return dst
}
