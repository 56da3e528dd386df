// Package objexport writes chunk meshes as Wavefront OBJ, one object per
// chunk, with a material per block type.
package objexport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"voxel-render/internal/graphics"
	"voxel-render/internal/world"
)

// Writer implements graphics.FrameBackend. Vertices are shared within a
// chunk object and never across chunks.
type Writer struct {
	out    *bufio.Writer
	file   io.Closer
	mtllib string

	header    bool
	nextIndex int
	index     map[[3]int32]int
	objects   int
	triangles int
	closed    bool
}

// NewWriter writes OBJ text to w. mtllib, if not empty, is referenced from
// the header and materials are selected with usemtl.
func NewWriter(w io.Writer, mtllib string) *Writer {
	return &Writer{
		out:       bufio.NewWriterSize(w, 256*1024),
		mtllib:    mtllib,
		nextIndex: 1,
		index:     make(map[[3]int32]int),
	}
}

// Create opens path for writing and puts the material library next to it,
// named after path with an .mtl extension.
func Create(path string, palette graphics.Palette) (*Writer, error) {
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	mf, err := os.Create(mtlPath)
	if err != nil {
		return nil, fmt.Errorf("create material library: %w", err)
	}
	if err := WriteMaterials(mf, palette); err != nil {
		mf.Close()
		return nil, err
	}
	if err := mf.Close(); err != nil {
		return nil, fmt.Errorf("close material library: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create obj: %w", err)
	}
	w := NewWriter(f, filepath.Base(mtlPath))
	w.file = f
	return w, nil
}

func (w *Writer) BeginFrame() error {
	if w.closed {
		return graphics.ErrBackendClosed
	}
	if w.header {
		return nil
	}
	w.header = true
	fmt.Fprintln(w.out, "# voxel-render chunk meshes")
	if w.mtllib != "" {
		fmt.Fprintln(w.out, "mtllib", w.mtllib)
	}
	return nil
}

func (w *Writer) Draw(b graphics.Batch) error {
	if w.closed {
		return graphics.ErrBackendClosed
	}
	if b.Topology != graphics.TriangleList || len(b.Vertices)%3 != 0 {
		return fmt.Errorf("obj export: chunk %v is not a triangle list", b.Coord)
	}
	if len(b.Vertices) == 0 {
		return nil
	}
	fmt.Fprintf(w.out, "o chunk_%d_%d_%d\n", b.Coord.X, b.Coord.Y, b.Coord.Z)
	w.objects++
	clear(w.index)

	var ids [3]int
	lastTag := world.BlockType(0)
	haveTag := false
	for i, v := range b.Vertices {
		key := [3]int32{v.X, v.Y, v.Z}
		id, ok := w.index[key]
		if !ok {
			id = w.nextIndex
			w.nextIndex++
			w.index[key] = id
			fmt.Fprintf(w.out, "v %d %d %d\n", v.X, v.Y, v.Z)
		}
		ids[i%3] = id
		if i%3 != 2 {
			continue
		}
		if w.mtllib != "" && (!haveTag || v.Tag != lastTag) {
			fmt.Fprintln(w.out, "usemtl", v.Tag)
			lastTag, haveTag = v.Tag, true
		}
		fmt.Fprintf(w.out, "f %d %d %d\n", ids[0], ids[1], ids[2])
		w.triangles++
	}
	return nil
}

func (w *Writer) EndFrame() error {
	if w.closed {
		return graphics.ErrBackendClosed
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("obj export: %w", err)
	}
	return nil
}

// Objects returns the number of chunk objects written.
func (w *Writer) Objects() int { return w.objects }

// Triangles returns the number of faces written.
func (w *Writer) Triangles() int { return w.triangles }

// Close flushes and, for writers made by Create, closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.out.Flush()
	if w.file != nil {
		err = errors.Join(err, w.file.Close())
	}
	return err
}

// WriteMaterials writes one newmtl entry per solid block type.
func WriteMaterials(w io.Writer, p graphics.Palette) error {
	bw := bufio.NewWriter(w)
	for bt := world.BlockType(1); bt < world.NumBlockTypes; bt++ {
		c := p.Color(bt)
		fmt.Fprintf(bw, "newmtl %s\nKd %.4f %.4f %.4f\nd 1.0000\nillum 1\n\n", bt, c[0], c[1], c[2])
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write materials: %w", err)
	}
	return nil
}

var _ graphics.FrameBackend = (*Writer)(nil)
