// Package glbackend draws chunk meshes with OpenGL 4.1 core. Every call must
// be made on the goroutine that owns the current GL context.
package glbackend

import (
	"fmt"

	"voxel-render/internal/graphics"
	"voxel-render/internal/logging"
	"voxel-render/internal/meshing"
	"voxel-render/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	bytesPerVertex = meshing.VertexStride * 4
	minBufferBytes = 16 * 1024
)

// chunkBuffer is the GPU copy of one chunk mesh.
type chunkBuffer struct {
	vao, vbo    uint32
	capacity    int // bytes
	vertexCount int32
	// identity of the uploaded slice; a rebuilt mesh has a new backing array
	src     *meshing.Vertex
	srcLen  int
	drawnAt uint64
}

// Backend implements graphics.FrameBackend.
type Backend struct {
	shader   *Shader
	palette  graphics.Palette
	viewProj mgl32.Mat4
	light    mgl32.Vec3
	clear    mgl32.Vec3
	log      *logging.Logger

	buffers map[world.ChunkCoord]*chunkBuffer
	scratch []int32
	frame   uint64
	closed  bool
}

// New initialises GL function pointers and builds the mesh program. A GL
// context must be current.
func New(palette graphics.Palette, log *logging.Logger) (*Backend, error) {
	if log == nil {
		log = logging.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	vert, frag, err := loadMeshSources()
	if err != nil {
		return nil, err
	}
	shader, err := NewShader(vert, frag)
	if err != nil {
		return nil, err
	}
	log.Infof("gl: %s, program %d", gl.GoStr(gl.GetString(gl.VERSION)), shader.ID)

	gl.Enable(gl.DEPTH_TEST)
	// meshing emits CCW front faces
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	return &Backend{
		shader:   shader,
		palette:  palette,
		viewProj: mgl32.Ident4(),
		light:    mgl32.Vec3{0.4, 0.8, 0.45}.Normalize(),
		clear:    mgl32.Vec3{0.53, 0.81, 0.92},
		log:      log,
		buffers:  make(map[world.ChunkCoord]*chunkBuffer),
	}, nil
}

// SetViewProjection sets the matrix used by the next frame.
func (b *Backend) SetViewProjection(m mgl32.Mat4) {
	b.viewProj = m
}

// SetViewport resizes the GL viewport.
func (b *Backend) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) BeginFrame() error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	b.frame++
	gl.ClearColor(b.clear[0], b.clear[1], b.clear[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	b.shader.Use()
	b.shader.SetMatrix4("viewProj", &b.viewProj[0])
	b.shader.SetVector3Array("palette", b.palette.Flat())
	b.shader.SetVector3("lightDir", b.light[0], b.light[1], b.light[2])
	return checkError("begin frame")
}

func (b *Backend) Draw(batch graphics.Batch) error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	if batch.Topology != graphics.TriangleList {
		return fmt.Errorf("gl backend: unsupported topology %v", batch.Topology)
	}
	if len(batch.Vertices) == 0 {
		return nil
	}
	buf := b.buffers[batch.Coord]
	if buf == nil {
		buf = newChunkBuffer()
		b.buffers[batch.Coord] = buf
	}
	if buf.src != &batch.Vertices[0] || buf.srcLen != len(batch.Vertices) {
		b.upload(batch.Coord, buf, batch.Vertices)
	}
	buf.drawnAt = b.frame

	gl.BindVertexArray(buf.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, buf.vertexCount)
	gl.BindVertexArray(0)
	return checkError("draw chunk " + batch.Coord.String())
}

func newChunkBuffer() *chunkBuffer {
	buf := &chunkBuffer{}
	gl.GenVertexArrays(1, &buf.vao)
	gl.GenBuffers(1, &buf.vbo)

	gl.BindVertexArray(buf.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	stride := int32(bytesPerVertex)
	// Position: 3 ints, offset 0
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribIPointer(0, 3, gl.INT, stride, gl.PtrOffset(0))
	// Tag: 1 int, offset 12
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribIPointer(1, 1, gl.INT, stride, gl.PtrOffset(3*4))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return buf
}

func (b *Backend) upload(coord world.ChunkCoord, buf *chunkBuffer, verts []meshing.Vertex) {
	b.scratch = meshing.Pack(b.scratch[:0], verts)
	need := len(b.scratch) * 4

	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	if need > buf.capacity {
		capacity := growCapacity(buf.capacity, need)
		gl.BufferData(gl.ARRAY_BUFFER, capacity, nil, gl.DYNAMIC_DRAW)
		if buf.capacity > 0 {
			b.log.Debugf("gl: chunk %v buffer grown %d -> %d bytes", coord, buf.capacity, capacity)
		}
		buf.capacity = capacity
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, need, gl.Ptr(b.scratch))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	buf.vertexCount = int32(len(verts))
	buf.src = &verts[0]
	buf.srcLen = len(verts)
}

// growCapacity doubles from the current size until need fits.
func growCapacity(current, need int) int {
	c := max(current, minBufferBytes)
	for c < need {
		c *= 2
	}
	return c
}

// EndFrame releases buffers of chunks that were not drawn this frame.
func (b *Backend) EndFrame() error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	for coord, buf := range b.buffers {
		if buf.drawnAt != b.frame {
			buf.release()
			delete(b.buffers, coord)
		}
	}
	return checkError("end frame")
}

// BufferedChunks returns how many chunks currently hold GPU buffers.
func (b *Backend) BufferedChunks() int {
	return len(b.buffers)
}

func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	for _, buf := range b.buffers {
		buf.release()
	}
	b.buffers = nil
	b.shader.Delete()
	return nil
}

func (buf *chunkBuffer) release() {
	gl.DeleteBuffers(1, &buf.vbo)
	gl.DeleteVertexArrays(1, &buf.vao)
}

func checkError(label string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error during %s: 0x%x", label, code)
	}
	return nil
}

var _ graphics.FrameBackend = (*Backend)(nil)
