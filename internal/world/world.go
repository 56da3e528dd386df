package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// World is the sparse set of loaded chunks, all sharing one edge length.
// A coordinate with no chunk is unloaded space and reads as air.
type World struct {
	chunkSize int
	store     *ChunkStore
}

// New creates an empty world whose chunks have the given edge length.
func New(chunkSize int) *World {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		panic(fmt.Sprintf("world: chunk size %d outside [1, %d]", chunkSize, MaxChunkSize))
	}
	return &World{
		chunkSize: chunkSize,
		store:     NewChunkStore(),
	}
}

// NewEmpty creates an empty world with DefaultChunkSize chunks.
func NewEmpty() *World {
	return New(DefaultChunkSize)
}

// ChunkSize returns the edge length of every chunk in the world.
func (w *World) ChunkSize() int {
	return w.chunkSize
}

// GetChunk returns the chunk at the given chunk coordinates, or nil.
func (w *World) GetChunk(cx, cy, cz int) *Chunk {
	return w.store.GetChunk(ChunkCoord{X: cx, Y: cy, Z: cz})
}

// HasChunk reports whether a chunk is loaded at coord.
func (w *World) HasChunk(coord ChunkCoord) bool {
	return w.store.HasChunk(coord)
}

// EnsureChunk returns the chunk at the given coordinates, creating an empty
// one if none is loaded.
func (w *World) EnsureChunk(cx, cy, cz int) *Chunk {
	if c := w.GetChunk(cx, cy, cz); c != nil {
		return c
	}
	c := NewChunk(cx, cy, cz, w.chunkSize)
	if err := w.AddChunk(c); err != nil {
		// Lost a race with another writer; use theirs.
		return w.GetChunk(cx, cy, cz)
	}
	return c
}

// AddChunk loads c into the world. Loaded neighbours are marked dirty since
// their boundary faces may now be hidden.
func (w *World) AddChunk(c *Chunk) error {
	if c.Size() != w.chunkSize {
		return fmt.Errorf("add chunk %v: size %d does not match world chunk size %d", c.Coord(), c.Size(), w.chunkSize)
	}
	if err := w.store.AddChunk(c); err != nil {
		return fmt.Errorf("add chunk %v: %w", c.Coord(), err)
	}
	w.markNeighboursDirty(c.Coord())
	return nil
}

// RemoveChunk unloads the chunk at coord and returns it, or nil.
func (w *World) RemoveChunk(coord ChunkCoord) *Chunk {
	c := w.store.RemoveChunk(coord)
	if c != nil {
		w.markNeighboursDirty(coord)
	}
	return c
}

func (w *World) markNeighboursDirty(coord ChunkCoord) {
	for _, o := range neighbourOffsets {
		if nb := w.store.GetChunk(coord.Add(o[0], o[1], o[2])); nb != nil {
			nb.MarkDirty()
		}
	}
}

// Chunks returns every loaded chunk ordered by coordinate.
func (w *World) Chunks() []*Chunk {
	return w.store.Chunks()
}

// Len returns the number of loaded chunks.
func (w *World) Len() int {
	return w.store.Len()
}

// ModCount increases every time a chunk is added or removed.
func (w *World) ModCount() uint64 {
	return w.store.GetModCount()
}

// Locate splits world block coordinates into a chunk coordinate and the
// local coordinates inside that chunk.
func (w *World) Locate(x, y, z int) (ChunkCoord, int, int, int) {
	n := w.chunkSize
	coord := ChunkCoord{X: floorDiv(x, n), Y: floorDiv(y, n), Z: floorDiv(z, n)}
	return coord, mod(x, n), mod(y, n), mod(z, n)
}

// Get returns the block type at the specified world coordinates.
func (w *World) Get(x, y, z int) BlockType {
	coord, lx, ly, lz := w.Locate(x, y, z)
	chunk := w.store.GetChunk(coord)
	if chunk == nil {
		return BlockTypeAir
	}
	return chunk.GetBlock(lx, ly, lz)
}

// IsAir checks if the block at the specified world coordinates is air.
func (w *World) IsAir(x, y, z int) bool {
	return w.Get(x, y, z) == BlockTypeAir
}

// Set places bt at the world coordinates, loading an empty chunk there if
// needed. Neighbour chunks sharing the touched border are marked dirty.
func (w *World) Set(x, y, z int, bt BlockType) {
	coord, lx, ly, lz := w.Locate(x, y, z)
	chunk := w.EnsureChunk(coord.X, coord.Y, coord.Z)
	chunk.SetBlock(lx, ly, lz, bt)
	w.markBorderDirty(coord, lx, ly, lz)
}

// Remove clears the block at the world coordinates. It never loads a chunk.
func (w *World) Remove(x, y, z int) bool {
	coord, lx, ly, lz := w.Locate(x, y, z)
	chunk := w.store.GetChunk(coord)
	if chunk == nil || chunk.IsAir(lx, ly, lz) {
		return false
	}
	chunk.SetBlock(lx, ly, lz, BlockTypeAir)
	w.markBorderDirty(coord, lx, ly, lz)
	return true
}

// Highest returns the world y of the topmost solid block in column (x, z)
// across loaded chunks.
func (w *World) Highest(x, z int) (int, bool) {
	coord, lx, _, lz := w.Locate(x, 0, z)
	best, found := 0, false
	for _, c := range w.store.Chunks() {
		if c.X != coord.X || c.Z != coord.Z {
			continue
		}
		_, oy, _ := c.Origin()
		for ly := c.Size() - 1; ly >= 0; ly-- {
			if c.IsAir(lx, ly, lz) {
				continue
			}
			if y := oy + ly; !found || y > best {
				best, found = y, true
			}
			break
		}
	}
	return best, found
}

func (w *World) markBorderDirty(coord ChunkCoord, lx, ly, lz int) {
	last := w.chunkSize - 1
	mark := func(dx, dy, dz int) {
		if nb := w.store.GetChunk(coord.Add(dx, dy, dz)); nb != nil {
			nb.MarkDirty()
		}
	}
	if lx == 0 {
		mark(-1, 0, 0)
	}
	if lx == last {
		mark(1, 0, 0)
	}
	if ly == 0 {
		mark(0, -1, 0)
	}
	if ly == last {
		mark(0, 1, 0)
	}
	if lz == 0 {
		mark(0, 0, -1)
	}
	if lz == last {
		mark(0, 0, 1)
	}
}

// BlockAt answers an occupancy query in c's local coordinates. Each
// coordinate may lie one step outside [0, size); such queries are answered
// by the neighbouring chunk, or as air if that neighbour is not loaded.
// Anything further out is a caller bug and panics.
func (w *World) BlockAt(c *Chunk, x, y, z int) BlockType {
	n := c.Size()
	if c.InBounds(x, y, z) {
		return c.GetBlock(x, y, z)
	}
	dx, lx := spill(x, n)
	dy, ly := spill(y, n)
	dz, lz := spill(z, n)
	nb := w.store.GetChunk(c.Coord().Add(dx, dy, dz))
	if nb == nil {
		return BlockTypeAir
	}
	return nb.GetBlock(lx, ly, lz)
}

// spill maps a local coordinate in [-1, n] to a chunk offset and the
// coordinate inside that chunk.
func spill(v, n int) (int, int) {
	switch {
	case v < -1 || v > n:
		panic(fmt.Sprintf("world: local coordinate %d outside [-1, %d]", v, n))
	case v == -1:
		return -1, n - 1
	case v == n:
		return 1, 0
	}
	return 0, v
}

// ChunkBounds returns the world-space axis-aligned box covered by c.
func (w *World) ChunkBounds(c *Chunk) (min, max mgl32.Vec3) {
	ox, oy, oz := c.Origin()
	n := float32(c.Size())
	min = mgl32.Vec3{float32(ox), float32(oy), float32(oz)}
	max = min.Add(mgl32.Vec3{n, n, n})
	return min, max
}

// Bounds returns the box enclosing every loaded chunk. ok is false for an
// empty world.
func (w *World) Bounds() (min, max mgl32.Vec3, ok bool) {
	for i, c := range w.Chunks() {
		cmin, cmax := w.ChunkBounds(c)
		if i == 0 {
			min, max = cmin, cmax
			continue
		}
		for a := 0; a < 3; a++ {
			if cmin[a] < min[a] {
				min[a] = cmin[a]
			}
			if cmax[a] > max[a] {
				max[a] = cmax[a]
			}
		}
	}
	return min, max, w.Len() > 0
}
