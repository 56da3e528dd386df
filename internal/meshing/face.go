package meshing

import "github.com/go-gl/mathgl/mgl32"

// Direction is one of the six axis-aligned face directions of a block.
type Direction uint8

// Faces are always emitted in this order.
const (
	NegX Direction = iota
	PosX
	NegY
	PosY
	NegZ
	PosZ
)

// Directions lists every direction in emission order.
var Directions = [6]Direction{NegX, PosX, NegY, PosY, NegZ, PosZ}

const (
	// VerticesPerFace is two triangles, unindexed.
	VerticesPerFace = 6
	// MaxVerticesPerBlock is the output of a block with no neighbours.
	MaxVerticesPerBlock = 6 * VerticesPerFace
)

var directionNames = [6]string{"-x", "+x", "-y", "+y", "-z", "+z"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

var directionOffsets = [6][3]int{
	NegX: {-1, 0, 0},
	PosX: {1, 0, 0},
	NegY: {0, -1, 0},
	PosY: {0, 1, 0},
	NegZ: {0, 0, -1},
	PosZ: {0, 0, 1},
}

// Offset returns the unit step toward the neighbour this face looks at.
func (d Direction) Offset() (dx, dy, dz int) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

// Normal returns the outward unit normal of the face.
func (d Direction) Normal() mgl32.Vec3 {
	dx, dy, dz := d.Offset()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

// faceCorners holds, per direction, the six corner offsets of the face quad
// relative to the block's minimum corner. Both triangles wind
// counter-clockwise seen from outside the block.
var faceCorners = [6][VerticesPerFace][3]int32{
	NegX: {
		{0, 0, 0}, {0, 0, 1}, {0, 1, 1},
		{0, 0, 0}, {0, 1, 1}, {0, 1, 0},
	},
	PosX: {
		{1, 0, 0}, {1, 1, 0}, {1, 1, 1},
		{1, 0, 0}, {1, 1, 1}, {1, 0, 1},
	},
	NegY: {
		{0, 0, 0}, {1, 0, 0}, {1, 0, 1},
		{0, 0, 0}, {1, 0, 1}, {0, 0, 1},
	},
	PosY: {
		{0, 1, 0}, {0, 1, 1}, {1, 1, 1},
		{0, 1, 0}, {1, 1, 1}, {1, 1, 0},
	},
	NegZ: {
		{0, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 0}, {1, 0, 0},
	},
	PosZ: {
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1},
		{0, 0, 1}, {1, 1, 1}, {0, 1, 1},
	},
}
