package render

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/logging"
	"voxel-render/internal/meshing"
	"voxel-render/internal/metrics"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Option {
	return WithLogger(logging.Discard())
}

func TestUpdateCachesCleanChunks(t *testing.T) {
	w := world.NewDemo(8)
	rec := graphics.NewRecorder()
	r := New(w, rec, quiet())
	ctx := context.Background()

	require.NoError(t, r.Update(ctx))
	first := r.Stats()
	assert.Equal(t, w.Len(), first.Chunks)
	assert.Equal(t, w.Len(), first.Rebuilt)
	assert.Zero(t, first.Cached)
	assert.Equal(t, first.Vertices, rec.VertexCount())
	for _, c := range w.Chunks() {
		assert.False(t, c.IsDirty(), "chunk %v left dirty", c.Coord())
	}

	batches := rec.LastFrame()
	require.NoError(t, r.Update(ctx))
	second := r.Stats()
	assert.Zero(t, second.Rebuilt)
	assert.Equal(t, w.Len(), second.Cached)
	assert.Equal(t, uint64(2), second.Pass)

	again := rec.LastFrame()
	require.Len(t, again, len(batches))
	for i := range batches {
		assert.Equal(t, batches[i].Coord, again[i].Coord)
		assert.Equal(t, batches[i].Vertices, again[i].Vertices)
		assert.Equal(t, graphics.TriangleList, again[i].Topology)
	}
}

func TestRemovalAcrossBorderRestoresFace(t *testing.T) {
	w := world.New(4)
	w.Set(3, 0, 0, world.BlockTypeStone)
	w.Set(4, 0, 0, world.BlockTypeStone)
	rec := graphics.NewRecorder()
	r := New(w, rec, quiet())
	ctx := context.Background()
	a := world.ChunkCoord{}

	require.NoError(t, r.Update(ctx))
	assert.Equal(t, 5*meshing.VerticesPerFace, r.Mesh(a).VertexCount())

	require.True(t, w.Remove(4, 0, 0))
	require.NoError(t, r.Update(ctx))
	assert.Equal(t, 2, r.Stats().Rebuilt, "both sides of the border are rebuilt")
	assert.Equal(t, meshing.MaxVerticesPerBlock, r.Mesh(a).VertexCount())
	assert.Len(t, rec.LastFrame(), 1, "the emptied chunk draws nothing")
}

func TestUnloadingNeighbourRestoresFaceAndPrunesCache(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 3, world.BlockTypeDirt)
	w.Set(0, 0, 4, world.BlockTypeDirt)
	r := New(w, graphics.NewRecorder(), quiet())
	ctx := context.Background()

	require.NoError(t, r.Update(ctx))
	b := world.ChunkCoord{Z: 1}
	require.NotNil(t, r.Mesh(b))

	require.NotNil(t, w.RemoveChunk(b))
	require.NoError(t, r.Update(ctx))
	assert.Nil(t, r.Mesh(b))
	assert.Equal(t, meshing.MaxVerticesPerBlock, r.Mesh(world.ChunkCoord{}).VertexCount())
}

func TestBackendErrorIsPropagated(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeSand)
	rec := graphics.NewRecorder()
	boom := errors.New("device lost")
	rec.Fail = boom

	err := New(w, rec, quiet()).Update(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, rec.Frames())

	require.NoError(t, rec.Close())
	err = New(w, rec, quiet()).Update(context.Background())
	assert.ErrorIs(t, err, graphics.ErrBackendClosed)
}

func TestPoolMatchesSerialMeshing(t *testing.T) {
	pool := meshing.NewWorkerPool(4, 8)
	defer pool.Shutdown()

	serial := New(world.NewDemo(4), graphics.NewRecorder(), quiet())
	require.NoError(t, serial.Update(context.Background()))

	w := world.NewDemo(4)
	parallel := New(w, graphics.NewRecorder(), quiet(), WithPool(pool))
	require.NoError(t, parallel.Update(context.Background()))

	for _, c := range w.Chunks() {
		want := serial.Mesh(c.Coord())
		got := parallel.Mesh(c.Coord())
		require.NotNil(t, got, "chunk %v", c.Coord())
		assert.Equal(t, want.Vertices, got.Vertices, "chunk %v", c.Coord())
	}
	assert.Equal(t, serial.Stats().Vertices, parallel.Stats().Vertices)
}

func TestCancelledContextStopsPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := graphics.NewRecorder()
	err := New(world.NewDemo(4), rec, quiet()).Update(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	pool := meshing.NewWorkerPool(2, 1)
	defer pool.Shutdown()
	err = New(world.NewDemo(4), rec, quiet(), WithPool(pool)).Update(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.Frames())
}

func TestFrustumSkipsChunksOutOfView(t *testing.T) {
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeBrick)
	w.Set(0, 0, 40, world.BlockTypeBrick) // behind the camera
	rec := graphics.NewRecorder()
	r := New(w, rec, quiet())

	cam := graphics.NewCamera(100, 100)
	cam.Target = mgl32.Vec3{0.5, 0.5, 0.5}
	cam.Distance = 10
	r.SetViewProjection(cam.ViewProjection())

	require.NoError(t, r.Update(context.Background()))
	assert.Equal(t, 1, r.Stats().Drawn)
	assert.Equal(t, 1, r.Stats().Culled)

	r.DisableCulling()
	require.NoError(t, r.Update(context.Background()))
	assert.Equal(t, 2, r.Stats().Drawn)
}

func TestRemeshRequestRebuildsEverything(t *testing.T) {
	w := world.NewDemo(8)
	r := New(w, graphics.NewRecorder(), quiet())
	ctx := context.Background()
	require.NoError(t, r.Update(ctx))

	config.RequestRemesh()
	require.NoError(t, r.Update(ctx))
	assert.Equal(t, w.Len(), r.Stats().Rebuilt)

	r.Invalidate()
	require.NoError(t, r.Update(ctx))
	assert.Equal(t, w.Len(), r.Stats().Rebuilt)

	require.NoError(t, r.Update(ctx))
	assert.Zero(t, r.Stats().Rebuilt)
}

func TestSlowPassIsLogged(t *testing.T) {
	var buf bytes.Buffer
	w := world.NewDemo(4)
	r := New(w, graphics.NewRecorder(), WithLogger(logging.New(&buf, logging.LevelInfo)), WithSlowPass(time.Nanosecond))

	require.NoError(t, r.Update(context.Background()))
	assert.Contains(t, buf.String(), "[WARN] slow render pass 1")
	assert.Contains(t, buf.String(), "meshing.BuildChunkMesh")
}

func TestMetricsAreRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := world.New(4)
	w.Set(0, 0, 0, world.BlockTypeWood)
	r := New(w, graphics.NewRecorder(), quiet(), WithMetrics(metrics.New(reg)))
	require.NoError(t, r.Update(context.Background()))
	require.NoError(t, r.Update(context.Background()))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "voxel_render_passes_total 2")
	assert.Contains(t, body, "voxel_mesh_chunks_built_total 1")
	assert.Contains(t, body, "voxel_mesh_vertices_emitted_total 36")
	assert.Contains(t, body, "voxel_render_cached_chunks 1")
}
