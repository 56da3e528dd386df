package world

import "fmt"

const (
	// DefaultChunkSize is the edge length used when none is configured.
	DefaultChunkSize = 16
	// MaxChunkSize bounds the edge length accepted by NewChunk.
	MaxChunkSize = 64
)

// Chunk is a cube of Size³ cells located at (X, Y, Z) on the chunk grid.
// Queries on a Chunk only accept local coordinates inside [0, Size); lookups
// that reach one step into a neighbour go through World.BlockAt.
type Chunk struct {
	X, Y, Z int

	size   int
	blocks []BlockType
	solid  int
	dirty  bool
}

// NewChunk creates an all-air chunk at the given chunk coordinates.
func NewChunk(x, y, z, size int) *Chunk {
	if size <= 0 || size > MaxChunkSize {
		panic(fmt.Sprintf("world: chunk size %d outside [1, %d]", size, MaxChunkSize))
	}
	return &Chunk{
		X:      x,
		Y:      y,
		Z:      z,
		size:   size,
		blocks: make([]BlockType, size*size*size),
		dirty:  true,
	}
}

// Coord returns the chunk's position on the chunk grid.
func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Y: c.Y, Z: c.Z}
}

// Size returns the edge length of the chunk.
func (c *Chunk) Size() int {
	return c.size
}

// Origin returns the world-space block coordinates of local (0, 0, 0).
func (c *Chunk) Origin() (int, int, int) {
	return c.X * c.size, c.Y * c.size, c.Z * c.size
}

// InBounds reports whether the local coordinates address a cell of c.
func (c *Chunk) InBounds(x, y, z int) bool {
	return x >= 0 && x < c.size && y >= 0 && y < c.size && z >= 0 && z < c.size
}

func (c *Chunk) index(x, y, z int) int {
	if !c.InBounds(x, y, z) {
		panic(fmt.Sprintf("world: local coordinate (%d,%d,%d) outside chunk %v of size %d", x, y, z, c.Coord(), c.size))
	}
	return (x*c.size+y)*c.size + z
}

// GetBlock returns the block stored at the local coordinates.
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	return c.blocks[c.index(x, y, z)]
}

// IsAir checks if the block at the local coordinates is air.
func (c *Chunk) IsAir(x, y, z int) bool {
	return c.GetBlock(x, y, z) == BlockTypeAir
}

// SetBlock stores bt at the local coordinates. Placing BlockTypeAir removes
// whatever was there.
func (c *Chunk) SetBlock(x, y, z int, bt BlockType) {
	if !bt.Valid() {
		panic(fmt.Sprintf("world: invalid block type %d", uint8(bt)))
	}
	idx := c.index(x, y, z)
	old := c.blocks[idx]
	if old == bt {
		return
	}
	switch {
	case old == BlockTypeAir:
		c.solid++
	case bt == BlockTypeAir:
		c.solid--
	}
	c.blocks[idx] = bt
	c.dirty = true
}

// SolidCount returns the number of non-air cells.
func (c *Chunk) SolidCount() int {
	return c.solid
}

// IsEmpty reports whether every cell is air.
func (c *Chunk) IsEmpty() bool {
	return c.solid == 0
}

// IsDirty returns whether the chunk has been modified since its last mesh.
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// MarkDirty forces the chunk to be re-meshed on the next pass.
func (c *Chunk) MarkDirty() {
	c.dirty = true
}

// SetClean marks the chunk as meshed.
func (c *Chunk) SetClean() {
	c.dirty = false
}

// ForEachSolid calls fn for every non-air cell in x, y, z order.
func (c *Chunk) ForEachSolid(fn func(x, y, z int, bt BlockType)) {
	if c.solid == 0 {
		return
	}
	i := 0
	for x := 0; x < c.size; x++ {
		for y := 0; y < c.size; y++ {
			for z := 0; z < c.size; z++ {
				if bt := c.blocks[i]; bt != BlockTypeAir {
					fn(x, y, z, bt)
				}
				i++
			}
		}
	}
}

// Blocks returns a copy of the raw storage in x, y, z order.
func (c *Chunk) Blocks() []BlockType {
	out := make([]BlockType, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// LoadBlocks replaces the chunk contents with data laid out as Blocks returns it.
func (c *Chunk) LoadBlocks(data []BlockType) error {
	if len(data) != len(c.blocks) {
		return fmt.Errorf("chunk %v: got %d blocks, want %d", c.Coord(), len(data), len(c.blocks))
	}
	solid := 0
	for i, bt := range data {
		if !bt.Valid() {
			return fmt.Errorf("chunk %v: invalid block type %d at index %d", c.Coord(), uint8(bt), i)
		}
		if bt != BlockTypeAir {
			solid++
		}
	}
	copy(c.blocks, data)
	c.solid = solid
	c.dirty = true
	return nil
}
