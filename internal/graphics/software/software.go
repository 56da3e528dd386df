// Package software rasterizes chunk meshes into an image.RGBA so frames can
// be produced without a GPU.
package software

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"voxel-render/internal/graphics"
	"voxel-render/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Stats counts triangles of the current frame.
type Stats struct {
	Batches   int
	Triangles int // rasterized
	Culled    int // back-facing
	Clipped   int // touching or behind the eye plane
}

// Option configures a Backend.
type Option func(*Backend)

// WithoutCaption disables the text overlay drawn in EndFrame.
func WithoutCaption() Option {
	return func(b *Backend) { b.caption = false }
}

// WithBackground sets the clear colour.
func WithBackground(c color.RGBA) Option {
	return func(b *Backend) { b.background = c }
}

// Backend implements graphics.FrameBackend on the CPU.
type Backend struct {
	img        *image.RGBA
	depth      []float32
	viewProj   mgl32.Mat4
	palette    graphics.Palette
	light      mgl32.Vec3
	background color.RGBA
	caption    bool
	stats      Stats
	closed     bool
}

// New creates a backend rendering width x height frames.
func New(width, height int, palette graphics.Palette, opts ...Option) *Backend {
	b := &Backend{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:      make([]float32, width*height),
		viewProj:   mgl32.Ident4(),
		palette:    palette,
		light:      mgl32.Vec3{0.4, 0.8, 0.45}.Normalize(),
		background: color.RGBA{0x87, 0xce, 0xeb, 0xff},
		caption:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetViewProjection sets the matrix used for subsequent draws.
func (b *Backend) SetViewProjection(m mgl32.Mat4) {
	b.viewProj = m
}

func (b *Backend) BeginFrame() error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(b.background), image.Point{}, draw.Src)
	inf := float32(math.Inf(1))
	for i := range b.depth {
		b.depth[i] = inf
	}
	b.stats = Stats{}
	return nil
}

func (b *Backend) Draw(batch graphics.Batch) error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	if batch.Topology != graphics.TriangleList {
		return fmt.Errorf("software backend: unsupported topology %v", batch.Topology)
	}
	if len(batch.Vertices)%3 != 0 {
		return fmt.Errorf("software backend: chunk %v has %d vertices, not a triangle list", batch.Coord, len(batch.Vertices))
	}
	b.stats.Batches++
	v := batch.Vertices
	for i := 0; i < len(v); i += 3 {
		b.drawTriangle(v[i], v[i+1], v[i+2])
	}
	return nil
}

// screenVertex is a vertex after the perspective divide, in pixels.
type screenVertex struct {
	x, y, z float32
}

func (b *Backend) drawTriangle(v0, v1, v2 meshing.Vertex) {
	world := [3]mgl32.Vec3{v0.Position(), v1.Position(), v2.Position()}
	var ndc [3]mgl32.Vec3
	for i, p := range world {
		clip := b.viewProj.Mul4x1(p.Vec4(1))
		if clip.W() <= 0 {
			// no near-plane clipping; partial triangles are dropped
			b.stats.Clipped++
			return
		}
		ndc[i] = clip.Vec3().Mul(1 / clip.W())
	}

	// signed area in NDC; positive is counter-clockwise, the front side
	area := (ndc[1][0]-ndc[0][0])*(ndc[2][1]-ndc[0][1]) - (ndc[2][0]-ndc[0][0])*(ndc[1][1]-ndc[0][1])
	if area <= 0 {
		b.stats.Culled++
		return
	}

	w, h := b.img.Rect.Dx(), b.img.Rect.Dy()
	var sv [3]screenVertex
	for i, p := range ndc {
		sv[i] = screenVertex{
			x: (p[0] + 1) * 0.5 * float32(w),
			y: (1 - p[1]) * 0.5 * float32(h),
			z: p[2],
		}
	}

	normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[0])).Normalize()
	col := b.palette.RGBA(v0.Tag, b.shade(normal))

	minX := max(0, int(floor3(sv[0].x, sv[1].x, sv[2].x)))
	maxX := min(w-1, int(ceil3(sv[0].x, sv[1].x, sv[2].x)))
	minY := max(0, int(floor3(sv[0].y, sv[1].y, sv[2].y)))
	maxY := min(h-1, int(ceil3(sv[0].y, sv[1].y, sv[2].y)))

	// screen y points down, so the edge function sign flips
	total := edge(sv[0], sv[1], sv[2].x, sv[2].y)
	if total == 0 {
		return
	}
	b.stats.Triangles++
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(sv[1], sv[2], px, py) / total
			w1 := edge(sv[2], sv[0], px, py) / total
			w2 := edge(sv[0], sv[1], px, py) / total
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*sv[0].z + w1*sv[1].z + w2*sv[2].z
			if z < -1 || z > 1 {
				continue
			}
			i := y*w + x
			if z >= b.depth[i] {
				continue
			}
			b.depth[i] = z
			b.img.SetRGBA(x, y, col)
		}
	}
}

func edge(a, c screenVertex, px, py float32) float32 {
	return (c.x-a.x)*(py-a.y) - (c.y-a.y)*(px-a.x)
}

// shade is an ambient plus diffuse term for a flat face.
func (b *Backend) shade(normal mgl32.Vec3) float32 {
	return 0.55 + 0.45*max(normal.Dot(b.light), 0)
}

func floor3(a, b, c float32) float32 {
	return float32(math.Floor(float64(min(a, b, c))))
}

func ceil3(a, b, c float32) float32 {
	return float32(math.Ceil(float64(max(a, b, c))))
}

func (b *Backend) EndFrame() error {
	if b.closed {
		return graphics.ErrBackendClosed
	}
	if b.caption {
		b.drawCaption(fmt.Sprintf("chunks %d  tris %d", b.stats.Batches, b.stats.Triangles))
	}
	return nil
}

func (b *Backend) drawCaption(text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  b.img,
		Src:  image.NewUniform(color.RGBA{0x10, 0x10, 0x10, 0xff}),
		Face: face,
		Dot:  fixed.P(4, 4+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// Image returns the framebuffer. It is overwritten by the next frame.
func (b *Backend) Image() *image.RGBA {
	return b.img
}

// Stats returns counters for the last frame.
func (b *Backend) Stats() Stats {
	return b.stats
}

// WritePNG encodes the framebuffer.
func (b *Backend) WritePNG(w io.Writer) error {
	return png.Encode(w, b.img)
}

// SavePNG writes the framebuffer to path.
func (b *Backend) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := b.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func (b *Backend) Close() error {
	b.closed = true
	return nil
}

var _ graphics.FrameBackend = (*Backend)(nil)
