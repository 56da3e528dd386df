package meshing

import (
	"iter"
	"math/bits"

	"voxel-render/internal/profiling"
	"voxel-render/internal/world"
)

// Mesh is the renderable surface of one chunk: a flat triangle list.
type Mesh struct {
	Coord    world.ChunkCoord
	Vertices []Vertex

	Blocks int // solid blocks visited
	Faces  int // faces emitted
	Culled int // faces hidden by a solid neighbour
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0
}

// BuildChunkMesh emits the visible faces of every solid block in c. Faces on
// the chunk border are resolved against neighbouring chunks through r.
func BuildChunkMesh(r BlockReader, c *world.Chunk) *Mesh {
	defer profiling.Track("meshing.BuildChunkMesh")()

	m := &Mesh{Coord: c.Coord()}
	if c.IsEmpty() {
		return m
	}
	m.Vertices = make([]Vertex, 0, c.SolidCount()*MaxVerticesPerBlock)
	c.ForEachSolid(func(x, y, z int, bt world.BlockType) {
		mask := FaceMask(r, c, x, y, z)
		n := bits.OnesCount8(mask)
		m.Blocks++
		m.Faces += n
		m.Culled += len(Directions) - n
		m.Vertices = appendFaces(m.Vertices, c, x, y, z, bt, mask)
	})
	return m
}

// ChunkVertices yields the same vertices as BuildChunkMesh, in the same
// order, without materialising them. The sequence can be ranged over again
// and reflects the chunk's contents at that time.
func ChunkVertices(r BlockReader, c *world.Chunk) iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		if c.IsEmpty() {
			return
		}
		n := c.Size()
		ox, oy, oz := c.Origin()
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				for z := 0; z < n; z++ {
					bt := c.GetBlock(x, y, z)
					if bt == world.BlockTypeAir {
						continue
					}
					mask := FaceMask(r, c, x, y, z)
					bx, by, bz := int32(ox+x), int32(oy+y), int32(oz+z)
					for _, d := range Directions {
						if mask&(1<<d) == 0 {
							continue
						}
						for _, k := range faceCorners[d] {
							if !yield(Vertex{X: bx + k[0], Y: by + k[1], Z: bz + k[2], Tag: bt}) {
								return
							}
						}
					}
				}
			}
		}
	}
}
