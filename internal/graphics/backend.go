// Package graphics holds the pieces shared by every render backend: the
// Backend contract, the tag palette, the camera and frustum tests.
package graphics

import (
	"errors"
	"sync"

	"voxel-render/internal/meshing"
	"voxel-render/internal/world"
)

// ErrBackendClosed is returned by a backend used after Close.
var ErrBackendClosed = errors.New("render backend is closed")

// Topology describes how a batch's vertices are assembled.
type Topology uint8

const (
	// TriangleList reads vertices three at a time, no sharing.
	TriangleList Topology = iota
)

func (t Topology) String() string {
	if t == TriangleList {
		return "triangle-list"
	}
	return "unknown"
}

// Batch is one chunk's worth of vertices handed to a backend. Vertices
// belong to the mesh cache and must not be modified.
type Batch struct {
	Coord    world.ChunkCoord
	Vertices []meshing.Vertex
	Topology Topology
}

// Backend consumes vertex batches. Draw may be called several times per
// pass, once per non-empty chunk.
type Backend interface {
	Draw(b Batch) error
}

// FrameBackend is implemented by backends that need to know where a pass
// starts and ends (clear and present, flush a file).
type FrameBackend interface {
	Backend
	BeginFrame() error
	EndFrame() error
}

// Recorder is an in-memory backend that keeps the batches of the last pass.
type Recorder struct {
	mu      sync.Mutex
	frames  int
	current []Batch
	last    []Batch
	closed  bool

	// Fail, when set, is returned by every Draw.
	Fail error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrBackendClosed
	}
	r.current = r.current[:0:0]
	return nil
}

func (r *Recorder) Draw(b Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrBackendClosed
	}
	if r.Fail != nil {
		return r.Fail
	}
	r.current = append(r.current, b)
	return nil
}

func (r *Recorder) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrBackendClosed
	}
	r.last = r.current
	r.current = nil
	r.frames++
	return nil
}

// Close makes further calls fail with ErrBackendClosed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Frames returns the number of completed passes.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// LastFrame returns the batches drawn during the last completed pass.
func (r *Recorder) LastFrame() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Batch(nil), r.last...)
}

// VertexCount sums the vertices of the last completed pass.
func (r *Recorder) VertexCount() int {
	n := 0
	for _, b := range r.LastFrame() {
		n += len(b.Vertices)
	}
	return n
}

type multiBackend []Backend

// Multi returns a backend that forwards every call to each of bs in order,
// stopping at the first error.
func Multi(bs ...Backend) FrameBackend {
	return multiBackend(bs)
}

func (m multiBackend) BeginFrame() error {
	for _, b := range m {
		if fb, ok := b.(FrameBackend); ok {
			if err := fb.BeginFrame(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m multiBackend) Draw(batch Batch) error {
	for _, b := range m {
		if err := b.Draw(batch); err != nil {
			return err
		}
	}
	return nil
}

func (m multiBackend) EndFrame() error {
	for _, b := range m {
		if fb, ok := b.(FrameBackend); ok {
			if err := fb.EndFrame(); err != nil {
				return err
			}
		}
	}
	return nil
}
