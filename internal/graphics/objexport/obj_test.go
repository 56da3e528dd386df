package objexport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxel-render/internal/graphics"
	"voxel-render/internal/meshing"
	"voxel-render/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPrefix(text, prefix string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestWriterSharesCornersWithinChunk(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeStone)
	m := meshing.BuildChunkMesh(w, w.GetChunk(0, 0, 0))

	var buf bytes.Buffer
	ow := NewWriter(&buf, "scene.mtl")
	require.NoError(t, ow.BeginFrame())
	require.NoError(t, ow.Draw(graphics.Batch{Coord: m.Coord, Vertices: m.Vertices}))
	require.NoError(t, ow.EndFrame())

	out := buf.String()
	assert.Contains(t, out, "mtllib scene.mtl\n")
	assert.Contains(t, out, "o chunk_0_0_0\n")
	assert.Equal(t, 8, countPrefix(out, "v "), "a cube has eight corners")
	assert.Equal(t, 12, countPrefix(out, "f "))
	assert.Equal(t, 1, countPrefix(out, "usemtl stone"))
	assert.Equal(t, 12, ow.Triangles())
}

func TestWriterObjectPerChunk(t *testing.T) {
	w := world.New(2)
	w.Set(0, 0, 0, world.BlockTypeGrass)
	w.Set(-1, 0, 0, world.BlockTypeSand)

	var buf bytes.Buffer
	ow := NewWriter(&buf, "")
	require.NoError(t, ow.BeginFrame())
	for _, c := range w.Chunks() {
		m := meshing.BuildChunkMesh(w, c)
		require.NoError(t, ow.Draw(graphics.Batch{Coord: m.Coord, Vertices: m.Vertices}))
	}
	require.NoError(t, ow.Draw(graphics.Batch{Coord: world.ChunkCoord{X: 9}}))
	require.NoError(t, ow.Close())

	out := buf.String()
	assert.Equal(t, 2, ow.Objects(), "empty batches write no object")
	assert.Contains(t, out, "o chunk_-1_0_0\n")
	assert.NotContains(t, out, "usemtl")
	// Corners on the shared plane x=0 are repeated per chunk: 8 + 8.
	assert.Equal(t, 16, countPrefix(out, "v "))
	// Indices are global and 1-based.
	assert.Contains(t, out, "f 9 ")

	assert.ErrorIs(t, ow.Draw(graphics.Batch{}), graphics.ErrBackendClosed)
}

func TestCreateWritesMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.obj")
	ow, err := Create(path, graphics.DefaultPalette())
	require.NoError(t, err)
	require.NoError(t, ow.BeginFrame())
	require.NoError(t, ow.EndFrame())
	require.NoError(t, ow.Close())

	obj, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "mtllib out.mtl")

	mtl, err := os.ReadFile(filepath.Join(dir, "out.mtl"))
	require.NoError(t, err)
	assert.Equal(t, int(world.NumBlockTypes)-1, countPrefix(string(mtl), "newmtl "))
	assert.Contains(t, string(mtl), "newmtl brick\n")
	assert.NotContains(t, string(mtl), "newmtl air")
}
