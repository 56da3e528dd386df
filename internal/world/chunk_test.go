package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	c := NewChunk(1, -2, 3, 4)

	assert.Equal(t, ChunkCoord{X: 1, Y: -2, Z: 3}, c.Coord())
	assert.Equal(t, 4, c.Size())
	assert.True(t, c.IsEmpty())
	assert.True(t, c.IsDirty(), "new chunks start dirty")

	c.ForEachSolid(func(x, y, z int, bt BlockType) {
		t.Fatalf("empty chunk reported solid block at (%d,%d,%d)", x, y, z)
	})

	c.SetBlock(3, 0, 2, BlockTypeStone)
	assert.Equal(t, BlockTypeStone, c.GetBlock(3, 0, 2))
	assert.True(t, c.IsAir(2, 0, 3))
	assert.Equal(t, 1, c.SolidCount())
}

func TestChunkSolidCountTracksReplacement(t *testing.T) {
	c := NewChunk(0, 0, 0, 2)
	c.SetBlock(0, 0, 0, BlockTypeGrass)
	c.SetBlock(0, 0, 0, BlockTypeDirt)
	c.SetBlock(1, 1, 1, BlockTypeSand)
	require.Equal(t, 2, c.SolidCount())

	c.SetBlock(0, 0, 0, BlockTypeAir)
	c.SetBlock(0, 1, 0, BlockTypeAir)
	assert.Equal(t, 1, c.SolidCount())
}

func TestChunkDirtyFlag(t *testing.T) {
	c := NewChunk(0, 0, 0, 2)
	c.SetClean()
	c.SetBlock(1, 0, 0, BlockTypeAir)
	assert.False(t, c.IsDirty(), "writing the same value is a no-op")

	c.SetBlock(1, 0, 0, BlockTypeBrick)
	assert.True(t, c.IsDirty())
}

func TestChunkOriginUsesSize(t *testing.T) {
	c := NewChunk(-1, 2, 0, 8)
	x, y, z := c.Origin()
	assert.Equal(t, [3]int{-8, 16, 0}, [3]int{x, y, z})
}

func TestChunkOutOfRangePanics(t *testing.T) {
	c := NewChunk(0, 0, 0, 4)
	for _, p := range [][3]int{{-1, 0, 0}, {4, 0, 0}, {0, 0, 4}, {0, -1, 0}} {
		assert.Panics(t, func() { c.GetBlock(p[0], p[1], p[2]) }, "GetBlock%v", p)
		assert.Panics(t, func() { c.SetBlock(p[0], p[1], p[2], BlockTypeStone) }, "SetBlock%v", p)
	}
}

func TestChunkInvalidSizePanics(t *testing.T) {
	assert.Panics(t, func() { NewChunk(0, 0, 0, 0) })
	assert.Panics(t, func() { NewChunk(0, 0, 0, MaxChunkSize+1) })
}

func TestChunkForEachSolidOrder(t *testing.T) {
	c := NewChunk(0, 0, 0, 2)
	c.SetBlock(1, 0, 0, BlockTypeStone)
	c.SetBlock(0, 1, 1, BlockTypeDirt)
	c.SetBlock(0, 0, 1, BlockTypeSand)

	var got [][3]int
	c.ForEachSolid(func(x, y, z int, _ BlockType) {
		got = append(got, [3]int{x, y, z})
	})
	assert.Equal(t, [][3]int{{0, 0, 1}, {0, 1, 1}, {1, 0, 0}}, got)
}

func TestChunkLoadBlocks(t *testing.T) {
	src := NewChunk(0, 0, 0, 2)
	src.SetBlock(0, 1, 0, BlockTypeWood)
	src.SetBlock(1, 1, 1, BlockTypeLeaves)

	dst := NewChunk(0, 0, 0, 2)
	dst.SetClean()
	require.NoError(t, dst.LoadBlocks(src.Blocks()))
	assert.Equal(t, 2, dst.SolidCount())
	assert.Equal(t, BlockTypeLeaves, dst.GetBlock(1, 1, 1))
	assert.True(t, dst.IsDirty())

	assert.Error(t, dst.LoadBlocks(make([]BlockType, 7)))
	bad := make([]BlockType, 8)
	bad[3] = NumBlockTypes
	assert.Error(t, dst.LoadBlocks(bad))
}

func TestParseBlockType(t *testing.T) {
	for bt := BlockTypeAir; bt < NumBlockTypes; bt++ {
		got, err := ParseBlockType(bt.String())
		require.NoError(t, err)
		assert.Equal(t, bt, got)
	}
	_, err := ParseBlockType("obsidian")
	assert.Error(t, err)
	assert.Equal(t, "block(200)", BlockType(200).String())
}
