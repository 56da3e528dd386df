package meshing

import (
	"context"
	"slices"
	"testing"

	"voxel-render/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleBlockChunkEndToEnd(t *testing.T) {
	w := world.New(2)
	c := world.NewChunk(1, -1, 2, 2)
	c.SetBlock(0, 0, 0, world.BlockTypeStone)
	require.NoError(t, w.AddChunk(c))

	m := BuildChunkMesh(w, c)
	require.Equal(t, 36, m.VertexCount())
	assert.Equal(t, world.ChunkCoord{X: 1, Y: -1, Z: 2}, m.Coord)
	assert.Equal(t, 1, m.Blocks)
	assert.Equal(t, 6, m.Faces)
	assert.Zero(t, m.Culled)

	ox, oy, oz := c.Origin()
	for _, v := range m.Vertices {
		assert.Contains(t, []int32{int32(ox), int32(ox + 1)}, v.X)
		assert.Contains(t, []int32{int32(oy), int32(oy + 1)}, v.Y)
		assert.Contains(t, []int32{int32(oz), int32(oz + 1)}, v.Z)
		assert.Equal(t, world.BlockTypeStone, v.Tag)
	}
}

func TestEmptyChunkMesh(t *testing.T) {
	w := world.New(4)
	c := w.EnsureChunk(0, 0, 0)
	m := BuildChunkMesh(w, c)
	assert.True(t, m.Empty())
	assert.Nil(t, m.Vertices)
}

func TestTwoBlocksTouching(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeGrass)
	w.Set(1, 0, 0, world.BlockTypeDirt)
	m := BuildChunkMesh(w, w.GetChunk(0, 0, 0))

	// No quad merging: each block keeps its five exposed faces.
	assert.Equal(t, 10*VerticesPerFace, m.VertexCount())
	assert.Equal(t, 2, m.Culled)

	tags := map[world.BlockType]int{}
	for _, v := range m.Vertices {
		tags[v.Tag]++
	}
	assert.Equal(t, map[world.BlockType]int{world.BlockTypeGrass: 30, world.BlockTypeDirt: 30}, tags)
}

func TestSolidChunkOnlyMeshesItsShell(t *testing.T) {
	const size = 4
	w := world.New(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				w.Set(x, y, z, world.BlockTypeStone)
			}
		}
	}
	m := BuildChunkMesh(w, w.GetChunk(0, 0, 0))
	assert.Equal(t, 6*size*size*VerticesPerFace, m.VertexCount())
	assert.Equal(t, size*size*size, m.Blocks)
}

func TestMeshDeterministic(t *testing.T) {
	w := world.NewDemo(8)
	for _, c := range w.Chunks() {
		first := BuildChunkMesh(w, c)
		second := BuildChunkMesh(w, c)
		require.Equal(t, first.Vertices, second.Vertices, "chunk %v", c.Coord())
	}
}

func TestChunkVerticesMatchesBuild(t *testing.T) {
	w := world.NewDemo(8)
	for _, c := range w.Chunks() {
		want := BuildChunkMesh(w, c).Vertices
		got := slices.Collect(ChunkVertices(w, c))
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, want, got, "chunk %v", c.Coord())
		// Restartable.
		assert.Equal(t, got, slices.Collect(ChunkVertices(w, c)))
	}
}

func TestChunkVerticesStopsEarly(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeSand)
	n := 0
	for range ChunkVertices(w, w.GetChunk(0, 0, 0)) {
		n++
		if n == 7 {
			break
		}
	}
	assert.Equal(t, 7, n)
}

func TestChunkMeshSeesLaterRemoval(t *testing.T) {
	w := world.New(4)
	w.Set(3, 1, 1, world.BlockTypeStone)
	w.Set(4, 1, 1, world.BlockTypeStone)
	a := w.GetChunk(0, 0, 0)

	assert.Equal(t, 5*VerticesPerFace, BuildChunkMesh(w, a).VertexCount())
	w.Remove(4, 1, 1)
	assert.Equal(t, 6*VerticesPerFace, BuildChunkMesh(w, a).VertexCount())
}

func TestPack(t *testing.T) {
	verts := []Vertex{
		{X: 1, Y: -2, Z: 3, Tag: world.BlockTypeWood},
		{X: 4, Y: 5, Z: -6, Tag: world.BlockTypeBrick},
	}
	got := Pack([]int32{9}, verts)
	assert.Equal(t, []int32{9, 1, -2, 3, int32(world.BlockTypeWood), 4, 5, -6, int32(world.BlockTypeBrick)}, got)
	assert.Empty(t, Pack(nil, nil))
}

func TestWorkerPoolBuildAllMatchesSequential(t *testing.T) {
	w := world.NewDemo(8)
	chunks := w.Chunks()
	pool := NewWorkerPool(4, 2)
	defer pool.Shutdown()
	assert.Equal(t, 4, pool.Workers())

	meshes, err := pool.BuildAll(context.Background(), w, chunks)
	require.NoError(t, err)
	require.Len(t, meshes, len(chunks))
	for i, c := range chunks {
		require.NotNil(t, meshes[i])
		assert.Equal(t, c.Coord(), meshes[i].Coord)
		assert.Equal(t, BuildChunkMesh(w, c).Vertices, meshes[i].Vertices)
	}
}

func TestWorkerPoolCancelledContext(t *testing.T) {
	w := world.NewDemo(4)
	pool := NewWorkerPool(1, 0)
	defer pool.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.BuildAll(ctx, w, w.Chunks())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPoolShutdown(t *testing.T) {
	w := world.New(4)
	c := w.EnsureChunk(0, 0, 0)
	pool := NewWorkerPool(2, 4)
	pool.Shutdown()

	assert.False(t, pool.SubmitJob(MeshJob{Reader: w, Chunk: c, ResultChan: make(chan MeshResult, 1)}))
	_, err := pool.BuildAll(context.Background(), w, []*world.Chunk{c})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func BenchmarkBuildChunkMesh_FullSurface(b *testing.B) {
	w := world.NewEmpty()
	ch := w.EnsureChunk(0, 0, 0)
	// Fill a full top surface
	for x := 0; x < world.DefaultChunkSize; x++ {
		for z := 0; z < world.DefaultChunkSize; z++ {
			ch.SetBlock(x, world.DefaultChunkSize-1, z, world.BlockTypeGrass)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildChunkMesh(w, ch)
	}
}

func BenchmarkBuildChunkMesh_Demo(b *testing.B) {
	w := world.NewDemo(world.DefaultChunkSize)
	chunks := w.Chunks()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range chunks {
			_ = BuildChunkMesh(w, c)
		}
	}
}
