// Package render drives a pass over the world: it rebuilds the meshes of
// chunks that changed and hands every non-empty mesh to a backend.
package render

import (
	"context"
	"fmt"
	"time"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/logging"
	"voxel-render/internal/meshing"
	"voxel-render/internal/metrics"
	"voxel-render/internal/profiling"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Stats describes the last completed pass.
type Stats struct {
	Pass     uint64
	Chunks   int // loaded
	Rebuilt  int // meshed this pass
	Cached   int // reused from an earlier pass
	Drawn    int // batches handed to the backend
	Culled   int // outside the view frustum
	Vertices int // handed to the backend
	Duration time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPool meshes stale chunks on p instead of the calling goroutine.
func WithPool(p *meshing.WorkerPool) Option {
	return func(r *Renderer) { r.pool = p }
}

// WithMetrics records pass and mesh metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Renderer) { r.metrics = c }
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithSlowPass fixes the slow-pass threshold. Without it the runtime
// setting in config is read every pass.
func WithSlowPass(d time.Duration) Option {
	return func(r *Renderer) { r.slowPass = d }
}

// Renderer owns the mesh cache for one world and one backend. Update must
// not run concurrently with edits to the world.
type Renderer struct {
	world   *world.World
	backend graphics.Backend
	pool    *meshing.WorkerPool
	metrics *metrics.Collector
	log     *logging.Logger

	slowPass   time.Duration
	cache      map[world.ChunkCoord]*meshing.Mesh
	viewProj   mgl32.Mat4
	cull       bool
	invalidate bool
	stats      Stats
}

func New(w *world.World, b graphics.Backend, opts ...Option) *Renderer {
	r := &Renderer{
		world:   w,
		backend: b,
		log:     logging.Default(),
		cache:   make(map[world.ChunkCoord]*meshing.Mesh),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetViewProjection enables frustum culling of whole chunks against m.
func (r *Renderer) SetViewProjection(m mgl32.Mat4) {
	r.viewProj = m
	r.cull = true
}

// DisableCulling draws every non-empty chunk regardless of the camera.
func (r *Renderer) DisableCulling() {
	r.cull = false
}

// Invalidate drops every cached mesh at the start of the next pass.
func (r *Renderer) Invalidate() {
	r.invalidate = true
}

// Stats returns the counters of the last completed pass.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Mesh returns the cached mesh of a chunk, or nil.
func (r *Renderer) Mesh(coord world.ChunkCoord) *meshing.Mesh {
	return r.cache[coord]
}

// Update runs one pass. All meshing finishes before the backend sees the
// first batch. Backend errors abort the pass and are returned wrapped.
func (r *Renderer) Update(ctx context.Context) error {
	start := time.Now()
	profiling.ResetFrame()
	stopTrack := profiling.Track("render.Update")

	chunks := r.world.Chunks()
	st := Stats{Pass: r.stats.Pass + 1, Chunks: len(chunks)}

	if err := r.rebuild(ctx, chunks, &st); err != nil {
		stopTrack()
		return err
	}
	if err := r.draw(chunks, &st); err != nil {
		stopTrack()
		return err
	}

	stopTrack()
	st.Duration = time.Since(start)
	r.stats = st
	r.metrics.ObservePass(st.Duration, st.Chunks, st.Cached)

	threshold := r.slowPass
	if threshold <= 0 {
		threshold = config.GetSlowPassThreshold()
	}
	if st.Duration > threshold {
		r.log.Warnf("slow render pass %d: %v, %d rebuilt, %d drawn [%s]",
			st.Pass, st.Duration.Round(time.Microsecond), st.Rebuilt, st.Drawn, profiling.TopN(3))
	}
	return nil
}

func (r *Renderer) rebuild(ctx context.Context, chunks []*world.Chunk, st *Stats) error {
	force := r.invalidate || config.TakeRemeshRequest()
	r.invalidate = false

	live := make(map[world.ChunkCoord]struct{}, len(chunks))
	var stale []*world.Chunk
	for _, c := range chunks {
		coord := c.Coord()
		live[coord] = struct{}{}
		if force || c.IsDirty() || r.cache[coord] == nil {
			stale = append(stale, c)
		}
	}
	for coord := range r.cache {
		if _, ok := live[coord]; !ok {
			delete(r.cache, coord)
		}
	}
	if len(stale) == 0 {
		st.Cached = len(chunks)
		return nil
	}

	var meshes []*meshing.Mesh
	if r.pool != nil && len(stale) > 1 {
		var err error
		meshes, err = r.pool.BuildAll(ctx, r.world, stale)
		if err != nil {
			return fmt.Errorf("mesh pass: %w", err)
		}
	} else {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("mesh pass: %w", err)
		}
		meshes = make([]*meshing.Mesh, len(stale))
		for i, c := range stale {
			meshes[i] = meshing.BuildChunkMesh(r.world, c)
		}
	}

	for i, c := range stale {
		m := meshes[i]
		r.cache[c.Coord()] = m
		c.SetClean()
		r.metrics.ObserveMesh(m.VertexCount(), m.Faces, m.Culled)
	}
	st.Rebuilt = len(stale)
	st.Cached = len(chunks) - len(stale)
	if force {
		r.log.Debugf("remeshed all %d chunks", len(stale))
	}
	return nil
}

func (r *Renderer) draw(chunks []*world.Chunk, st *Stats) error {
	fb, framed := r.backend.(graphics.FrameBackend)
	if framed {
		if err := fb.BeginFrame(); err != nil {
			return fmt.Errorf("begin frame: %w", err)
		}
	}

	var frustum graphics.Frustum
	if r.cull {
		frustum = graphics.NewFrustum(r.viewProj)
	}
	for _, c := range chunks {
		m := r.cache[c.Coord()]
		if m == nil || m.Empty() {
			continue
		}
		if r.cull {
			lo, hi := r.world.ChunkBounds(c)
			if !frustum.IntersectsAABB(lo, hi) {
				st.Culled++
				continue
			}
		}
		batch := graphics.Batch{Coord: m.Coord, Vertices: m.Vertices, Topology: graphics.TriangleList}
		if err := r.backend.Draw(batch); err != nil {
			return fmt.Errorf("draw chunk %v: %w", m.Coord, err)
		}
		st.Drawn++
		st.Vertices += len(m.Vertices)
	}

	if framed {
		if err := fb.EndFrame(); err != nil {
			return fmt.Errorf("end frame: %w", err)
		}
	}
	return nil
}
