package meshing

import (
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of int32 per packed vertex (pos.xyz + tag)
const VertexStride = 4

// Vertex is one corner of a mesh triangle: an integral world-space position
// and the type of the block whose face it belongs to.
type Vertex struct {
	X, Y, Z int32
	Tag     world.BlockType
}

// Position returns the vertex position as a float vector.
func (v Vertex) Position() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Pack appends verts to dst as interleaved x, y, z, tag int32 values, the
// layout the GPU backends upload.
func Pack(dst []int32, verts []Vertex) []int32 {
	if need := len(dst) + len(verts)*VertexStride; cap(dst) < need {
		grown := make([]int32, len(dst), need)
		copy(grown, dst)
		dst = grown
	}
	for _, v := range verts {
		dst = append(dst, v.X, v.Y, v.Z, int32(v.Tag))
	}
	return dst
}
